package fakers

import (
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/go-faker/faker/v4"
)

// UserFaker builds an unsaved customer. The password is returned separately
// because the repository hashes it on create.
func UserFaker() (*models.User, string) {
	first, last := faker.FirstName(), faker.LastName()
	return &models.User{
		Name:  first + " " + last,
		Email: strings.ToLower(first+"."+last) + "@example.com",
		Phone: faker.Phonenumber(),
		Role:  models.RoleCustomer,
	}, faker.Password()
}
