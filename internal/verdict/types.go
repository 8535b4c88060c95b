// Package verdict holds the structured analysis produced by the model
// and the normalizer that recovers it from raw completion text.
package verdict

// SourceKind: category of a cited source. Values are wire-level domain
// constants and are serialized as-is.
type SourceKind string

const (
	KindPrimaryOutlet       SourceKind = "testata_primaria"
	KindSecondaryOutlet     SourceKind = "testata_secondaria"
	KindOnlineNewspaper     SourceKind = "quotidiano_online"
	KindNationalInstitution SourceKind = "istituzionale_nazionale"
	KindForeignInstitution  SourceKind = "istituzionale_estero"
	KindVerifiedBlog        SourceKind = "blog_verificato"
	KindForum               SourceKind = "forum"
	KindSocialMedia         SourceKind = "social_media"
	KindUnknown             SourceKind = "sconosciuto"
)

// SourceRef: one source cited by the analysis.
type SourceRef struct {
	Name        string     `json:"nome"`
	Kind        SourceKind `json:"tipo"`
	Reliability int        `json:"affidabilita"`
	URL         *string    `json:"url"`
}

// Verdict: structured result of a fact check.
type Verdict struct {
	TruthScore     int         `json:"veridicita"`
	Explanation    string      `json:"spiegazione"`
	Sources        []SourceRef `json:"fonti"`
	WarningSignals []string    `json:"segnali_allerta"`
	Context        string      `json:"contesto"`
}
