package models

import (
	"regexp"
	"strings"
)

// FieldName identifies an order form field. Values are the form and wire names.
type FieldName string

const (
	FieldIdentityNumber FieldName = "ci"
	FieldFirstName      FieldName = "name"
	FieldLastName       FieldName = "lastname"
	FieldPhone          FieldName = "phone"
	FieldProvince       FieldName = "provincia"
	FieldCity           FieldName = "ciudad"
	FieldEmail          FieldName = "email"
	FieldPaymentProof   FieldName = "recive"
	FieldRaffleID       FieldName = "id"
	FieldTicketCount    FieldName = "numbers"
)

// FormFieldOrder is the display order of the checkout form
var FormFieldOrder = []FieldName{
	FieldFirstName,
	FieldLastName,
	FieldIdentityNumber,
	FieldProvince,
	FieldCity,
	FieldEmail,
	FieldPhone,
	FieldPaymentProof,
}

// PaymentProof is the uploaded bank transfer receipt
type PaymentProof struct {
	Filename    string
	ContentType string
	Data        []byte
	PreviewURL  string
}

// IsImage reports whether the proof is an image rather than a document
func (p *PaymentProof) IsImage() bool {
	return p != nil && strings.HasPrefix(p.ContentType, "image/")
}

// Size returns the proof size in bytes
func (p *PaymentProof) Size() int64 {
	if p == nil {
		return 0
	}
	return int64(len(p.Data))
}

// OrderForm holds the checkout form state
type OrderForm struct {
	IdentityNumber string
	FirstName      string
	LastName       string
	Phone          string
	Province       string
	City           string
	Email          string
	PaymentProof   *PaymentProof
	RaffleID       string
	TicketCount    int
}

// Value returns the text value of a field
func (f *OrderForm) Value(name FieldName) string {
	switch name {
	case FieldIdentityNumber:
		return f.IdentityNumber
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldPhone:
		return f.Phone
	case FieldProvince:
		return f.Province
	case FieldCity:
		return f.City
	case FieldEmail:
		return f.Email
	case FieldRaffleID:
		return f.RaffleID
	}
	return ""
}

// SetValue sets a text field; it reports false for fields that are not free text
func (f *OrderForm) SetValue(name FieldName, value string) bool {
	switch name {
	case FieldIdentityNumber:
		f.IdentityNumber = value
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldPhone:
		f.Phone = value
	case FieldEmail:
		f.Email = value
	default:
		return false
	}
	return true
}

// ValidationErrors maps a form field to a human-readable message
type ValidationErrors map[FieldName]string

// Has reports whether the field has an error
func (v ValidationErrors) Has(name FieldName) bool {
	_, ok := v[name]
	return ok
}

// First returns the first errored field in form display order
func (v ValidationErrors) First() (FieldName, bool) {
	for _, name := range FormFieldOrder {
		if v.Has(name) {
			return name, true
		}
	}
	return "", false
}

// SubmissionState is the checkout submission lifecycle
type SubmissionState int

const (
	StateIdle SubmissionState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s SubmissionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Validation messages shown next to each field
const (
	MsgFirstNameRequired = "Nombre es requerido"
	MsgLastNameRequired  = "Apellido es requerido"
	MsgIdentityRequired  = "Cédula o pasaporte es requerido"
	MsgEmailRequired     = "Email es requerido"
	MsgEmailInvalid      = "Email no es válido"
	MsgProofRequired     = "Comprobante de pago es requerido"
	MsgProvinceRequired  = "Provincia es requerida"
	MsgCityRequired      = "Ciudad es requerida"
)

var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidEmail checks the simple local@domain.tld shape
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateOrderForm returns every missing or invalid field. An empty result
// means the form can be submitted.
func ValidateOrderForm(form OrderForm) ValidationErrors {
	errs := ValidationErrors{}

	if strings.TrimSpace(form.FirstName) == "" {
		errs[FieldFirstName] = MsgFirstNameRequired
	}
	if strings.TrimSpace(form.LastName) == "" {
		errs[FieldLastName] = MsgLastNameRequired
	}
	if strings.TrimSpace(form.IdentityNumber) == "" {
		errs[FieldIdentityNumber] = MsgIdentityRequired
	}
	if strings.TrimSpace(form.Email) == "" {
		errs[FieldEmail] = MsgEmailRequired
	} else if !ValidEmail(form.Email) {
		errs[FieldEmail] = MsgEmailInvalid
	}
	if form.PaymentProof == nil || len(form.PaymentProof.Data) == 0 {
		errs[FieldPaymentProof] = MsgProofRequired
	}
	if form.Province == "" {
		errs[FieldProvince] = MsgProvinceRequired
	}
	if form.City == "" {
		errs[FieldCity] = MsgCityRequired
	}

	return errs
}
