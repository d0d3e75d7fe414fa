package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginMasksPassword(t *testing.T) {
	expectedMap := map[string]string{"email": "email", "password": "***"}
	expected, _ := json.Marshal(expectedMap)
	loginReq := Login{Email: "email", Password: "password"}

	actual, _ := json.Marshal(loginReq)

	assert.EqualValues(t, expected, actual)
	assert.EqualValues(t, "password", loginReq.Password)
}

func TestSignupMasksPassword(t *testing.T) {
	signupReq := Signup{Username: "ada", Email: "ada@example.com", Password: "hunter22"}

	actual, _ := json.Marshal(signupReq)

	var decoded map[string]string
	assert.NoError(t, json.Unmarshal(actual, &decoded))
	assert.Equal(t, "***", decoded["password"])
	assert.EqualValues(t, "hunter22", signupReq.Password)
}
