package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	KycPending  = "PENDING"
	KycApproved = "APPROVED"
	KycRejected = "REJECTED"
)

// Transaction types.
const (
	TxTypeTaskReward       = "TASK_REWARD"
	TxTypeReferralBonus    = "REFERRAL_BONUS"
	TxTypeBonus            = "BONUS"
	TxTypeWithdrawal       = "WITHDRAWAL"
	TxTypeWithdrawalRefund = "WITHDRAWAL_REFUND"
	TxTypeAdjustment       = "ADJUSTMENT"
)

// Transaction statuses.
const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusRejected  = "REJECTED"
)

// Withdrawal statuses. COMPLETED, REJECTED and CANCELLED are terminal.
const (
	WithdrawalPending    = "PENDING"
	WithdrawalProcessing = "PROCESSING"
	WithdrawalCompleted  = "COMPLETED"
	WithdrawalRejected   = "REJECTED"
	WithdrawalCancelled  = "CANCELLED"
)

// Supported payout methods.
const (
	MethodBkash  = "BKASH"
	MethodNagad  = "NAGAD"
	MethodRocket = "ROCKET"
	MethodPaypal = "PAYPAL"
	MethodBank   = "BANK"
)

// Commission types for a referral level.
const (
	CommissionPercentage = "PERCENTAGE"
	CommissionFlat       = "FLAT"
)

// Referral earning source types.
const (
	SourceTaskReward = "TASK_REWARD"
	SourcePurchase   = "PURCHASE"
	SourceBonus      = "BONUS"
)
