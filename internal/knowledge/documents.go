// Package knowledge answers common questions from four static JSON documents
// (prices, FAQ, services, company) loaded once at startup.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	PricesFile   = "prices.json"
	FAQFile      = "faq.json"
	ServicesFile = "services.json"
	CompanyFile  = "company_info.json"
)

type Package struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Timeline    string   `json:"timeline"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type AddOn struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

type Prices struct {
	Packages           []Package `json:"packages"`
	AdditionalServices []AddOn   `json:"additional_services"`
	PaymentTerms       []string  `json:"payment_terms"`
}

func (p Prices) empty() bool {
	return len(p.Packages) == 0 && len(p.AdditionalServices) == 0 && len(p.PaymentTerms) == 0
}

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FAQ struct {
	Items []FAQItem `json:"frequently_asked_questions"`
}

type Service struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Features           []string `json:"features"`
	Technologies       []string `json:"technologies,omitempty"`
	SupportedPlatforms []string `json:"supported_platforms,omitempty"`
	SupportedCRM       []string `json:"supported_crm,omitempty"`
}

type Services struct {
	Detailed map[string]Service `json:"detailed_services"`
}

type Company struct {
	Name           string            `json:"name"`
	Specialization string            `json:"specialization"`
	Achievements   []string          `json:"achievements"`
	Team           map[string]string `json:"team"`
	Values         []string          `json:"values"`
}

type CompanyInfo struct {
	Company Company `json:"company"`
}

func (c CompanyInfo) empty() bool {
	co := c.Company
	return co.Name == "" && co.Specialization == "" && len(co.Achievements) == 0 &&
		len(co.Team) == 0 && len(co.Values) == 0
}

// Base is an immutable snapshot of the knowledge documents.
type Base struct {
	prices   Prices
	faq      FAQ
	services Services
	company  CompanyInfo
}

// New builds a Base from already decoded documents.
func New(prices Prices, faq FAQ, services Services, company CompanyInfo) *Base {
	return &Base{prices: prices, faq: faq, services: services, company: company}
}

// Load reads the four documents from dir. Every document is loaded independently:
// a missing or corrupt file leaves that document empty and is reported in the
// returned error, while the Base is always usable.
func Load(dir string) (*Base, error) {
	b := &Base{}
	errs := []error{
		readJSON(filepath.Join(dir, PricesFile), &b.prices),
		readJSON(filepath.Join(dir, FAQFile), &b.faq),
		readJSON(filepath.Join(dir, ServicesFile), &b.services),
		readJSON(filepath.Join(dir, CompanyFile), &b.company),
	}
	return b, errors.Join(errs...)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FAQItems returns a copy of the FAQ list in document order.
func (b *Base) FAQItems() []FAQItem {
	out := make([]FAQItem, len(b.faq.Items))
	copy(out, b.faq.Items)
	return out
}
