package models

const (
	QualificationMBBS       = "MBBS"
	QualificationMD         = "MD"
	QualificationBDS        = "BDS"
	QualificationPharmD     = "PharmD"
	QualificationBScNursing = "BSc Nursing"
	QualificationMScNursing = "MSc Nursing"
	QualificationOther      = "Other"
)

const (
	PackageBasic    = "Basic"
	PackageStandard = "Standard"
	PackagePremium  = "Premium"
)

const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

const (
	ApplicationDataFlow = "DataFlow"
	ApplicationMumaris  = "Mumaris"
	ApplicationOther    = "Other"
)

const (
	ApplicationPending    = "pending"
	ApplicationInProgress = "in_progress"
	ApplicationCompleted  = "completed"
	ApplicationRejected   = "rejected"
)

const (
	DocumentPending  = "pending"
	DocumentApproved = "approved"
	DocumentRejected = "rejected"
)

const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Communication statuses only move forward: sent -> delivered -> read.
const (
	CommunicationSent      = "sent"
	CommunicationDelivered = "delivered"
	CommunicationRead      = "read"
)

var (
	QualificationTypes  = []string{QualificationMBBS, QualificationMD, QualificationBDS, QualificationPharmD, QualificationBScNursing, QualificationMScNursing, QualificationOther}
	PackageTypes        = []string{PackageBasic, PackageStandard, PackagePremium}
	ClientStatuses      = []string{ClientActive, ClientInactive}
	PaymentStatuses     = []string{PaymentPending, PaymentCompleted}
	ApplicationTypes    = []string{ApplicationDataFlow, ApplicationMumaris, ApplicationOther}
	ApplicationStatuses = []string{ApplicationPending, ApplicationInProgress, ApplicationCompleted, ApplicationRejected}
	DocumentStatuses    = []string{DocumentPending, DocumentApproved, DocumentRejected}
	Channels            = []string{ChannelEmail, ChannelWhatsApp}
	CommunicationStates = []string{CommunicationSent, CommunicationDelivered, CommunicationRead}
)

// OneOf reports whether v is one of the allowed values.
func OneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// CommunicationRank orders statuses so status sync never moves backwards.
func CommunicationRank(status string) int {
	switch status {
	case CommunicationSent:
		return 1
	case CommunicationDelivered:
		return 2
	case CommunicationRead:
		return 3
	}
	return 0
}
