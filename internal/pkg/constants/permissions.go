package constants

// Permission names gating route groups.
const (
	ManageBeneficiarios = "manage_beneficiarios"
	ApproveOrg          = "approve_org"
	ApproveArticle      = "approve_article"
	AppendLedger        = "append_ledger"
	ViewRatingStats     = "view_rating_stats"
)
