package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonCode = regexp.MustCompile("[^A-Z0-9-]+")

// NormalizeCode upper-cases a product code and strips everything but letters, digits and hyphens
func NormalizeCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = nonCode.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

// GenerateProductCode generates a unique product code
func GenerateProductCode() string {
	return "PROD-" + strings.ToUpper(uuid.New().String()[:8])
}

// ReceiptNo derives a short printable number for a purchase, e.g. R-20260314-1A2B3C4D
func ReceiptNo(purchaseID uuid.UUID, createdAt time.Time) string {
	return "R-" + createdAt.UTC().Format("20060102") + "-" + strings.ToUpper(purchaseID.String()[:8])
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
