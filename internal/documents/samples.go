package documents

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleLease = `RESIDENTIAL LEASE AGREEMENT

Tenant: John Smith
Property Address: 123 Main Street, Apartment 4B, New York, NY 10001
Lease Term: 12 months
Monthly Rent: $2000.00
Security Deposit: $2000.00
Start Date: 01/01/2024
End Date: 12/31/2024`

const sampleInvoice = `INVOICE #INV-2024-001

Date: 01/15/2024
Due Date: 02/15/2024
From: Property Management Inc.
Property: Unit 4B - 123 Main Street
Total Amount Due: $2000.00`

var samples = []struct {
	name string
	body string
}{
	{"sample_lease.txt", sampleLease},
	{"sample_invoice.txt", sampleInvoice},
}

// CreateSamples writes the sample lease and invoice into dir and returns
// their paths.
func CreateSamples(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create samples: mkdir %s: %w", dir, err)
	}
	paths := make([]string, 0, len(samples))
	for _, s := range samples {
		path := filepath.Join(dir, s.name)
		if err := os.WriteFile(path, []byte(s.body), 0o644); err != nil {
			return nil, fmt.Errorf("create samples: write %s: %w", s.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
