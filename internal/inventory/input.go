package inventory

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	priceDecimals    = 2
	maxPriceIntegral = 8 // numeric(10,2)
)

// ProductInput is the raw product form as submitted by a client.
type ProductInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Price    string `json:"price" validate:"required,max=20"`
	Quantity string `json:"quantity" validate:"required,max=20"`
	Category string `json:"category" validate:"required,max=20"`

	Description string `json:"description" validate:"max=2000"`
}

// ProductFields is a ProductInput that passed validation.
type ProductFields struct {
	Name        string
	Price       decimal.Decimal
	Quantity    int
	CategoryID  int64
	Description string
}

func (in ProductInput) trimmed() ProductInput {
	return ProductInput{
		Name:        strings.TrimSpace(in.Name),
		Price:       strings.TrimSpace(in.Price),
		Quantity:    strings.TrimSpace(in.Quantity),
		Category:    strings.TrimSpace(in.Category),
		Description: strings.TrimSpace(in.Description),
	}
}

// Parse validates the form and converts it to typed fields.
// Every failing field is reported in the returned *ValidationError.
func (in ProductInput) Parse() (ProductFields, error) {
	in = in.trimmed()
	verr := validateStruct(in)
	failed := func(field string) bool {
		_, ok := verr.Fields[field]
		return ok
	}

	out := ProductFields{Name: in.Name, Description: in.Description}

	if !failed("price") {
		if price, msg := parsePrice(in.Price); msg != "" {
			verr.Add("price", msg)
		} else {
			out.Price = price
		}
	}

	if !failed("quantity") {
		if qty, err := strconv.Atoi(in.Quantity); err != nil {
			verr.Add("quantity", "Enter a whole number.")
		} else if qty < 0 {
			verr.Add("quantity", "Ensure this value is greater than or equal to 0.")
		} else {
			out.Quantity = qty
		}
	}

	if !failed("category") {
		if id, err := strconv.ParseInt(in.Category, 10, 64); err != nil || id < 1 {
			verr.Add("category", "Select a valid choice.")
		} else {
			out.CategoryID = id
		}
	}

	if err := verr.OrNil(); err != nil {
		return ProductFields{}, err
	}
	return out, nil
}

// parsePrice accepts plain decimal notation only. Exponents are refused before
// decimal rescaling, which costs O(10^|exp|).
func parsePrice(raw string) (decimal.Decimal, string) {
	if strings.ContainsAny(raw, "eE") {
		return decimal.Decimal{}, "Enter a number."
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, "Enter a number."
	}
	switch {
	case price.IsNegative():
		return decimal.Decimal{}, "Ensure this value is greater than or equal to 0."
	case !price.Equal(price.Round(priceDecimals)):
		return decimal.Decimal{}, "Ensure that there are no more than 2 decimal places."
	case len(price.Truncate(0).String()) > maxPriceIntegral:
		return decimal.Decimal{}, "Ensure that there are no more than 8 digits before the decimal point."
	}
	return price.Round(priceDecimals), ""
}

// CategoryInput is the raw category form as submitted by a client.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// Parse validates the form and returns the trimmed category name.
func (in CategoryInput) Parse() (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in).OrNil(); err != nil {
		return "", err
	}
	return in.Name, nil
}
