package validate

import (
	"github.com/avdonin/contracts-lite/internal/model"
)

// ClientInput carries the raw client fields as received from a request body
// or a data file; BirthDate is the dd-mm-yyyy string form.
type ClientInput struct {
	LastName       string `json:"last_name" yaml:"last_name"`
	FirstName      string `json:"first_name" yaml:"first_name"`
	MiddleName     string `json:"middle_name" yaml:"middle_name"`
	PassportSeries string `json:"passport_series" yaml:"passport_series"`
	PassportNumber string `json:"passport_number" yaml:"passport_number"`
	BirthDate      string `json:"birth_date" yaml:"birth_date"`
	Phone          string `json:"phone" yaml:"phone"`
	Email          string `json:"email" yaml:"email"`
	Address        string `json:"address" yaml:"address"`
}

// Client validates every field and returns the normalized record. The first
// failing field aborts the build.
func Client(in ClientInput) (model.Client, error) {
	var client model.Client
	var err error

	if client.LastName, err = Name("last_name", in.LastName); err != nil {
		return model.Client{}, err
	}
	if client.FirstName, err = Name("first_name", in.FirstName); err != nil {
		return model.Client{}, err
	}
	if client.MiddleName, err = Name("middle_name", in.MiddleName); err != nil {
		return model.Client{}, err
	}
	if client.PassportSeries, err = PassportSeries(in.PassportSeries); err != nil {
		return model.Client{}, err
	}
	if client.PassportNumber, err = PassportNumber(in.PassportNumber); err != nil {
		return model.Client{}, err
	}
	if client.BirthDate, err = BirthDate(in.BirthDate); err != nil {
		return model.Client{}, err
	}
	if client.Phone, err = Phone(in.Phone); err != nil {
		return model.Client{}, err
	}
	if client.Email, err = Email(in.Email); err != nil {
		return model.Client{}, err
	}
	if client.Address, err = Address(in.Address); err != nil {
		return model.Client{}, err
	}
	return client, nil
}
