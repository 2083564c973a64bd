package testutils

import (
	"crypto/rand"
	"math/big"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/userhub/userhub/pkg/models"
)

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		bigInt, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		b[i] = charset[bigInt.Int64()]
	}
	return string(b)
}

// NewFakeCreateUserRequest returns a valid create request with fake data.
func NewFakeCreateUserRequest() *models.CreateUserRequest {
	age := gofakeit.Number(18, 99)
	return &models.CreateUserRequest{
		Name:    gofakeit.Name(),
		Email:   gofakeit.Email(),
		Age:     &age,
		Phone:   gofakeit.Numerify("##########"),
		Address: gofakeit.Address().Address,
	}
}
