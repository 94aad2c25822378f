package constants

// Source names where the data in a parse response came from.
type Source string

// Stable values (clients key on these exact strings).
const (
	SourceIDLookup Source = "id_lookup" // pre-seeded record
	SourceText     Source = "text"      // LLM extraction from free text
	SourceImage    Source = "image"     // LLM extraction from a license image
)
