package fakers

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

var imagePaths = []string{
	"/static/images/products/toy-1.jpg",
	"/static/images/products/toy-2.jpg",
	"/static/images/products/toy-3.jpg",
	"/static/images/products/outfit-1.jpg",
	"/static/images/products/outfit-2.jpg",
}

var variantNames = []string{"0-6 M", "6-12 M", "1-2 Y", "2-3 Y", "3-4 Y"}

// ProductFaker builds an unsaved active product with one to three images
// and, for some products, age-size variants.
func ProductFaker(rng *rand.Rand) *models.Product {
	name := capitalize(faker.Word()) + " " + capitalize(faker.Word())
	code := faker.UUIDDigit()[:6]

	price := decimal.NewFromInt(int64(rng.Intn(40)+5) * 50).Sub(decimal.NewFromInt(1))
	product := &models.Product{
		Name:        name,
		Slug:        slug.Make(name + "-" + code),
		Description: faker.Paragraph(),
		Sku:         strings.ToUpper("KS-" + code),
		Price:       price,
		Quantity:    rng.Intn(40),
		IsActive:    true,
	}

	if rng.Intn(3) == 0 {
		product.CompareAtPrice = decimal.NewNullDecimal(price.Mul(decimal.NewFromFloat(1.25)).Round(0))
	}

	for i := 0; i < rng.Intn(3)+1; i++ {
		product.Images = append(product.Images, models.ProductImage{
			URL:      imagePaths[rng.Intn(len(imagePaths))],
			AltText:  name,
			Position: i,
		})
	}

	if rng.Intn(2) == 0 {
		for i, size := range variantNames[:rng.Intn(3)+2] {
			v := models.ProductVariant{
				Name:     size,
				Sku:      fmt.Sprintf("%s-%d", product.Sku, i+1),
				Quantity: rng.Intn(15),
				IsActive: true,
			}
			if i == 0 {
				v.PriceOverride = decimal.NewNullDecimal(price.Sub(decimal.NewFromInt(50)))
			}
			product.Variants = append(product.Variants, v)
		}
	}

	return product
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
