package response

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"
)
