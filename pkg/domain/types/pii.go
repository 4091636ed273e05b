package types

// PIIType is the kind of personal data replaced by the anonymizer.
// The value doubles as the placeholder label.
type PIIType string

const (
	PIITypeCPF       PIIType = "CPF"
	PIITypeRG        PIIType = "RG"
	PIITypeCNS       PIIType = "CNS"
	PIITypePhone     PIIType = "TELEFONE"
	PIITypeEmail     PIIType = "EMAIL"
	PIITypeDate      PIIType = "DATA"
	PIITypePerson    PIIType = "PACIENTE"
	PIITypeLocation  PIIType = "LOCAL"
	PIITypeInstitute PIIType = "INSTITUIÇÃO"
)

// String returns the string representation of the PII type
func (t PIIType) String() string {
	return string(t)
}

// EntityCategory is a named-entity class produced by a recognizer
type EntityCategory string

const (
	EntityPerson       EntityCategory = "PER"
	EntityLocation     EntityCategory = "LOC"
	EntityOrganization EntityCategory = "ORG"
)

// IsValid checks if the entity category is one the anonymizer replaces
func (c EntityCategory) IsValid() bool {
	switch c {
	case EntityPerson, EntityLocation, EntityOrganization:
		return true
	default:
		return false
	}
}

// PIIType returns the placeholder label for the entity category
func (c EntityCategory) PIIType() PIIType {
	switch c {
	case EntityPerson:
		return PIITypePerson
	case EntityLocation:
		return PIITypeLocation
	case EntityOrganization:
		return PIITypeInstitute
	default:
		return ""
	}
}

// AnonymizerStrategy selects the anonymizer implementation
type AnonymizerStrategy string

const (
	AnonymizerRegex AnonymizerStrategy = "regex"
	AnonymizerNER   AnonymizerStrategy = "ner"
)

// IsValid checks if the strategy is known
func (s AnonymizerStrategy) IsValid() bool {
	return s == AnonymizerRegex || s == AnonymizerNER
}

// String returns the string representation of the strategy
func (s AnonymizerStrategy) String() string {
	return string(s)
}
