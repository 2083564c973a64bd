package pebblestore

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/userhub/userhub/pkg/models"
)

// GenerateFixtureData seeds count fake users into the store at path.
func GenerateFixtureData(path string, count int) error {
	dao, err := NewUserStoreDAO(path)
	if err != nil {
		return err
	}
	defer dao.Close()

	gofakeit.Seed(0)

	ctx := context.Background()
	for i := 0; i < count; i++ {
		age := gofakeit.Number(18, 99)
		_, err := dao.Create(ctx, &models.CreateUserRequest{
			Name:    gofakeit.Name(),
			Email:   gofakeit.Email(),
			Age:     &age,
			Phone:   gofakeit.Numerify("##########"),
			Address: gofakeit.Address().Address,
		})
		if err != nil {
			return fmt.Errorf("failed to create fixture user: %w", err)
		}
	}

	return nil
}
