// Package language normalizes caption language tags.
//
// Availability listings mix BCP 47 tags, ISO 639-2 codes, and full English
// names; Normalize maps them all to lowercase canonical tags so resolver
// policy matching stays exact.
package language
