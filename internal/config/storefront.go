package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BankAccount is one destination listed in the bank transfer panel
type BankAccount struct {
	Bank        string `yaml:"bank"`
	LogoURL     string `yaml:"logo_url"`
	AccountType string `yaml:"account_type"`
	Number      string `yaml:"number"`
	HolderID    string `yaml:"holder_id"`
	HolderName  string `yaml:"holder_name"`
	QRCodeURL   string `yaml:"qr_code_url"`
}

// Storefront holds the copy and offers that are not served by the raffle API
type Storefront struct {
	SiteName         string        `yaml:"site_name"`
	BundleQuantities []int         `yaml:"bundle_quantities"`
	PrizeSlots       int           `yaml:"prize_slots"`
	WhatsAppNumber   string        `yaml:"whatsapp_number"`
	BankAccounts     []BankAccount `yaml:"bank_accounts"`
}

// WhatsAppURL returns the wa.me link for the contact number
func (s Storefront) WhatsAppURL() string {
	if s.WhatsAppNumber == "" {
		return ""
	}
	return "https://wa.me/" + s.WhatsAppNumber
}

// DefaultStorefront returns the built-in storefront settings
func DefaultStorefront() Storefront {
	return Storefront{
		SiteName:         "Rifas MyM",
		BundleQuantities: []int{5, 10, 15, 20, 25, 30},
		PrizeSlots:       10,
		WhatsAppNumber:   "593995501485",
		BankAccounts: []BankAccount{
			{
				Bank:       "Banco Pichincha",
				Number:     "221391347",
				HolderID:   "0963333752",
				HolderName: "Maribeth Rodríguez",
			},
			{
				Bank:        "Banco Guayaquil",
				AccountType: "Cuenta Ahorros",
				Number:      "48326213",
				HolderID:    "0927391995",
				HolderName:  "Miguel Moreira",
			},
		},
	}
}

// LoadStorefront reads a storefront YAML file. Keys missing from the file
// keep their built-in defaults.
func LoadStorefront(path string) (Storefront, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Storefront{}, err
	}

	storefront := DefaultStorefront()
	if err := yaml.Unmarshal(data, &storefront); err != nil {
		return Storefront{}, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, q := range storefront.BundleQuantities {
		if q < 1 {
			return Storefront{}, fmt.Errorf("bundle quantity must be at least 1, got %d", q)
		}
	}
	if storefront.PrizeSlots < 0 {
		return Storefront{}, fmt.Errorf("prize_slots must not be negative")
	}

	return storefront, nil
}
