package domain

// FileKind classifies an uploaded financial document.
type FileKind string

const (
	FileKindPOSItemLevel        FileKind = "pos_item_level"
	FileKindPOSSummary          FileKind = "pos_summary"
	FileKindDeliveryPayout      FileKind = "delivery_payout"
	FileKindBankStatement       FileKind = "bank_statement"
	FileKindCreditCardStatement FileKind = "credit_card_statement"
	FileKindProcessorStatement  FileKind = "payment_processor_statement"
	FileKindReceipt             FileKind = "receipt"
	FileKindInvoice             FileKind = "invoice"
	FileKindMenu                FileKind = "menu"
	FileKindPayroll             FileKind = "payroll"
	FileKindExpenseReport       FileKind = "expense_report"
	FileKindSubscriptionBilling FileKind = "subscription_billing"
	FileKindUnknown             FileKind = "unknown"
)

// ValidFileKinds is the closed classification taxonomy.
var ValidFileKinds = map[FileKind]bool{
	FileKindPOSItemLevel:        true,
	FileKindPOSSummary:          true,
	FileKindDeliveryPayout:      true,
	FileKindBankStatement:       true,
	FileKindCreditCardStatement: true,
	FileKindProcessorStatement:  true,
	FileKindReceipt:             true,
	FileKindInvoice:             true,
	FileKindMenu:                true,
	FileKindPayroll:             true,
	FileKindExpenseReport:       true,
	FileKindSubscriptionBilling: true,
	FileKindUnknown:             true,
}

// Grain is the level of detail a source document provides.
type Grain string

const (
	GrainItemLevel        Grain = "item_level"
	GrainSummaryOnly      Grain = "summary_only"
	GrainTransactionLevel Grain = "transaction_level"
	GrainUnknown          Grain = "unknown"
)

// ValidGrains lists the accepted grain values.
var ValidGrains = map[Grain]bool{
	GrainItemLevel:        true,
	GrainSummaryOnly:      true,
	GrainTransactionLevel: true,
	GrainUnknown:          true,
}

// ExpenseType is the normalized expense classification.
type ExpenseType string

const (
	ExpenseTypeCostOfGoods       ExpenseType = "cost_of_goods"
	ExpenseTypeLabor             ExpenseType = "labor"
	ExpenseTypeOccupancy         ExpenseType = "occupancy"
	ExpenseTypeMarketing         ExpenseType = "marketing"
	ExpenseTypeUtilities         ExpenseType = "utilities"
	ExpenseTypeSupplies          ExpenseType = "supplies"
	ExpenseTypeSoftware          ExpenseType = "software"
	ExpenseTypeShipping          ExpenseType = "shipping"
	ExpenseTypeTaxesFees         ExpenseType = "taxes_fees"
	ExpenseTypePaymentProcessing ExpenseType = "payment_processing"
	ExpenseTypePlatformFees      ExpenseType = "platform_fees"
	ExpenseTypeOther             ExpenseType = "other"
)

// ValidExpenseTypes is the closed expense taxonomy.
var ValidExpenseTypes = map[ExpenseType]bool{
	ExpenseTypeCostOfGoods:       true,
	ExpenseTypeLabor:             true,
	ExpenseTypeOccupancy:         true,
	ExpenseTypeMarketing:         true,
	ExpenseTypeUtilities:         true,
	ExpenseTypeSupplies:          true,
	ExpenseTypeSoftware:          true,
	ExpenseTypeShipping:          true,
	ExpenseTypeTaxesFees:         true,
	ExpenseTypePaymentProcessing: true,
	ExpenseTypePlatformFees:      true,
	ExpenseTypeOther:             true,
}

// LeakType is the closed revenue-leak taxonomy.
type LeakType string

const (
	LeakTypeMissingPayment      LeakType = "missing_payment"
	LeakTypeDuplicateCharge     LeakType = "duplicate_charge"
	LeakTypeUnusedSubscription  LeakType = "unused_subscription"
	LeakTypeFailedPayment       LeakType = "failed_payment"
	LeakTypePricingInefficiency LeakType = "pricing_inefficiency"
	LeakTypeBillingError        LeakType = "billing_error"
	LeakTypeChurnPermanentLoss  LeakType = "churn_permanent_loss"
	LeakTypeRefundFeeLoss       LeakType = "refund_fee_loss"
	LeakTypeOther               LeakType = "other"
)

// ValidLeakTypes maps every accepted leak type to its display label.
var ValidLeakTypes = map[LeakType]string{
	LeakTypeMissingPayment:      "Missing Payments",
	LeakTypeDuplicateCharge:     "Duplicate Charges",
	LeakTypeUnusedSubscription:  "Unused Subscriptions",
	LeakTypeFailedPayment:       "Failed Payments",
	LeakTypePricingInefficiency: "Pricing Inefficiencies",
	LeakTypeBillingError:        "Billing Errors",
	LeakTypeChurnPermanentLoss:  "Churn / Permanent Loss",
	LeakTypeRefundFeeLoss:       "Refund Fee Losses",
	LeakTypeOther:               "Other",
}

// Severity ranks how urgent a finding is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities so that high > medium > low > anything else.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ModelSource records which stage produced a leak.
type ModelSource string

const (
	ModelSourceStageA ModelSource = "stage_a_only"
	ModelSourceStageB ModelSource = "stage_b_only"
	ModelSourceBoth   ModelSource = "both"
)

// ExpenseStatus tracks whether an expense obligation is still outstanding.
type ExpenseStatus string

const (
	ExpenseStatusPaid    ExpenseStatus = "paid"
	ExpenseStatusPending ExpenseStatus = "pending"
	ExpenseStatusOverdue ExpenseStatus = "overdue"
	ExpenseStatusUnknown ExpenseStatus = "unknown"
)

// ScanType selects between a one-shot scan and a deepening re-analysis.
type ScanType string

const (
	ScanTypeFree     ScanType = "free"
	ScanTypeEnhanced ScanType = "enhanced"
)

// ValidScanTypes lists the accepted scan types.
var ValidScanTypes = map[ScanType]bool{
	ScanTypeFree:     true,
	ScanTypeEnhanced: true,
}
