package model

// MerchantSource says which signal a merchant identity was derived from.
type MerchantSource string

const (
	SourceKnownTable MerchantSource = "knownTable"
	SourceContact    MerchantSource = "contact"
	SourceUPIPrefix  MerchantSource = "upiPrefix"
	SourcePhrase     MerchantSource = "phrase"
	SourceNone       MerchantSource = "none"
)

// UnknownMerchant is the placeholder label used when no signal is available.
const UnknownMerchant = "Unknown"

// MerchantIdentity is a resolved, human-readable counterparty.
type MerchantIdentity struct {
	Label      string
	Source     MerchantSource
	Confidence float64
	Category   string // pre-assigned category, known-table entries only
}

// Resolved reports whether any signal produced the identity.
func (m MerchantIdentity) Resolved() bool {
	return m.Source != SourceNone && m.Source != ""
}

// OtherCategory is the fallback category label.
const OtherCategory = "Other"

// Category is a spending category with the categorizer's confidence in it.
type Category struct {
	Label      string
	Confidence float64
	Matched    bool // false when the label is the fallback
}
