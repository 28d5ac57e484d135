// Package catalog holds the fixed set of document templates a credential can be issued from.
package catalog

import (
	"context"
	"fmt"

	"mysafepocket/internal/pocket/models"
)

// Credential types in catalog order.
const (
	TypeAadhaarCard       models.CredentialType = "AADHAAR_CARD"
	TypeDegreeCertificate models.CredentialType = "DEGREE_CERTIFICATE"
	TypeDrivingLicense    models.CredentialType = "DRIVING_LICENSE"
	TypePassport          models.CredentialType = "PASSPORT"
	TypeStudentID         models.CredentialType = "STUDENT_ID"
)

// Catalog is an immutable, ordered list of document templates.
type Catalog struct {
	templates []models.DocumentTemplate
}

// New returns a catalog over templates. The slice is copied.
func New(templates ...models.DocumentTemplate) *Catalog {
	c := &Catalog{templates: make([]models.DocumentTemplate, len(templates))}
	for i, t := range templates {
		t.Claims = t.Claims.Clone()
		c.templates[i] = t
	}
	return c
}

// Default returns the five built-in templates.
func Default() *Catalog {
	return New(
		template(TypeAadhaarCard, "Aadhaar Card",
			"Name", "Aarav Sharma",
			"Date of Birth", "15-08-1990",
			"Gender", "Male",
			"Aadhaar Number", "1234 5678 9012",
			"Address", "123, Main Street, Bengaluru, 560001",
			"Is 18+", "Yes",
		),
		template(TypeDegreeCertificate, "Degree Certificate",
			"Student Name", "Priya Patel",
			"University", "Tech University of India",
			"Degree", "Bachelor of Technology",
			"Field of Study", "Computer Science",
			"Graduation Date", "May 2022",
			"Degree Completed", "Yes",
		),
		template(TypeDrivingLicense, "Driving License",
			"Name", "Rohan Singh",
			"Date of Birth", "25-12-1995",
			"License Number", "DL123456789",
			"Vehicle Class", "Motorcycle, Car",
			"Valid Till", "24-12-2035",
		),
		template(TypePassport, "Passport",
			"Full Name", "Ananya Gupta",
			"Passport No.", "Z1234567",
			"Nationality", "Indian",
			"Date of Issue", "01-01-2020",
			"Date of Expiry", "31-12-2029",
			"Place of Birth", "Mumbai",
		),
		template(TypeStudentID, "Student ID Card",
			"Student Name", "Vikram Kumar",
			"Student ID", "S98765",
			"Institution", "National Science College",
			"Program", "B.Sc. Physics",
			"Valid Upto", "June 2025",
		),
	)
}

func template(typ models.CredentialType, name string, kv ...string) models.DocumentTemplate {
	var claims models.Claims
	for i := 0; i+1 < len(kv); i += 2 {
		claims.Set(kv[i], models.Text(kv[i+1]))
	}
	return models.DocumentTemplate{Type: typ, TypeName: name, Claims: claims}
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// At returns a copy of the template at index i.
func (c *Catalog) At(i int) (models.DocumentTemplate, error) {
	if i < 0 || i >= len(c.templates) {
		return models.DocumentTemplate{}, fmt.Errorf("template index %d out of range [0,%d)", i, len(c.templates))
	}
	return copyTemplate(c.templates[i]), nil
}

// Templates returns copies of every template in order.
func (c *Catalog) Templates() []models.DocumentTemplate {
	out := make([]models.DocumentTemplate, len(c.templates))
	for i, t := range c.templates {
		out[i] = copyTemplate(t)
	}
	return out
}

// ByType looks a template up by credential type.
func (c *Catalog) ByType(typ models.CredentialType) (models.DocumentTemplate, bool) {
	for _, t := range c.templates {
		if t.Type == typ {
			return copyTemplate(t), true
		}
	}
	return models.DocumentTemplate{}, false
}

func copyTemplate(t models.DocumentTemplate) models.DocumentTemplate {
	t.Claims = t.Claims.Clone()
	return t
}

// Classifier picks the catalog template for an uploaded document.
type Classifier interface {
	Classify(ctx context.Context, file models.SourceFile) (int, error)
}

// SizeModuloClassifier selects template size mod catalog length. It never reads file contents.
type SizeModuloClassifier struct {
	Catalog *Catalog
}

// Classify implements Classifier.
func (c SizeModuloClassifier) Classify(_ context.Context, file models.SourceFile) (int, error) {
	n := int64(c.Catalog.Len())
	if n == 0 {
		return 0, fmt.Errorf("catalog is empty")
	}
	if file.Size < 0 {
		return 0, fmt.Errorf("file size must not be negative")
	}
	return int(file.Size % n), nil
}
