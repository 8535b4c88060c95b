// Package prompt builds the verification prompt sent to the completion
// backend. The template is fixed; only the claim text varies.
package prompt

import "strings"

const claimPlaceholder = "{claim}"

// factCheckTemplate constrains the model to reply with a single JSON
// object matching the verdict schema. Field names and domain values are
// part of the wire contract and must not be translated.
const factCheckTemplate = `Analizza veridicità di: "{claim}"

Rispondi SOLO con JSON perfetto:
{
  "veridicita": 0-100,
  "spiegazione": "spiegazione chiara 1-2 frasi",
  "fonti": [{"nome":"Fonte","tipo":"testata_primaria","affidabilita":85,"url":"https://..."}],
  "segnali_allerta": [],
  "contesto": "contesto"
}

Valori ammessi per "tipo": testata_primaria, testata_secondaria, quotidiano_online, istituzionale_nazionale, istituzionale_estero, blog_verificato, forum, social_media, sconosciuto.
"veridicita" e "affidabilita" sono interi tra 0 e 100.`

// BuildFactCheck: renders the verification prompt for a claim. The claim
// is embedded verbatim; it has already passed input validation.
func BuildFactCheck(claim string) string {
	return strings.ReplaceAll(factCheckTemplate, claimPlaceholder, claim)
}
