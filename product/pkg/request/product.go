package request

type InsertReview struct {
	Rating  int32  `json:"rating"  validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}
