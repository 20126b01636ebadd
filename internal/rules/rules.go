// Package rules holds the document-requirements table for incapacity claims
// and the reconciliation of required documents against uploaded files.
package rules

import "strings"

// Canonical claim types. Subtypes only apply to ClaimOther.
const (
	ClaimGeneral   = "general"
	ClaimMaternity = "maternity"
	ClaimPaternity = "paternity"
	ClaimTraffic   = "traffic"
	ClaimOther     = "other"

	SubTypeGeneral = "general"
	SubTypeLabor   = "labor"
	SubTypeTraffic = "traffic"
)

// Document labels as they appear on the submitted paperwork.
const (
	DocIncapacidadMedica  = "Incapacidad médica"
	DocEpicrisis          = "Epicrisis o resumen clínico"
	DocLicenciaMaternidad = "Licencia o incapacidad de maternidad"
	DocCedulaMadre        = "Cédula de la madre"
	DocCedulaPadre        = "Cédula del padre"
	DocRegistroCivil      = "Registro civil"
	DocNacidoVivo         = "Certificado de nacido vivo"
	DocFURIPS             = "FURIPS"
	DocSOAT               = "SOAT"
	DocSOATSiAplica       = "SOAT (si aplica)"
)

// Input carries the claim attributes that determine which documents are
// required. Days of zero means the day count was not provided.
type Input struct {
	ClaimType    string
	SubType      string
	Days         int
	MotherWorks  string // affirmative: "si", "sí" or "yes"
	GhostVehicle string // "no" means an identified vehicle, so SOAT applies
}

// RequiredDocs returns the ordered list of documents required for the claim.
// Unknown claim types and "other" without a subtype yield an empty list.
func RequiredDocs(in Input) []string {
	switch in.ClaimType {
	case ClaimGeneral:
		if in.Days > 2 {
			return []string{DocIncapacidadMedica, DocEpicrisis}
		}
		return []string{DocIncapacidadMedica}

	case ClaimMaternity:
		return []string{
			DocLicenciaMaternidad,
			DocEpicrisis,
			DocCedulaMadre,
			DocRegistroCivil,
			DocNacidoVivo,
		}

	case ClaimPaternity:
		docs := []string{
			DocEpicrisis,
			DocCedulaPadre,
			DocRegistroCivil,
			DocNacidoVivo,
		}
		if affirmative(in.MotherWorks) {
			docs = append([]string{DocLicenciaMaternidad}, docs...)
		}
		return docs

	case ClaimTraffic:
		docs := []string{DocIncapacidadMedica, DocEpicrisis, DocFURIPS}
		if strings.EqualFold(strings.TrimSpace(in.GhostVehicle), "no") {
			docs = append(docs, DocSOAT)
		}
		return docs

	case ClaimOther:
		switch in.SubType {
		case SubTypeGeneral, SubTypeLabor:
			if in.Days > 2 {
				return []string{DocIncapacidadMedica, DocEpicrisis}
			}
			return []string{DocIncapacidadMedica}
		case SubTypeTraffic:
			return []string{DocIncapacidadMedica, DocEpicrisis, DocFURIPS, DocSOATSiAplica}
		}
		return []string{}
	}

	return []string{}
}

// affirmative reports whether a free-text yes/no flag reads as "yes".
// Submissions arrive with either the Spanish or English spelling.
func affirmative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "si", "sí", "yes":
		return true
	}
	return false
}
