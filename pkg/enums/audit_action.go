package enums

// AuditAction tags an audit log entry with the operation that produced it.
type AuditAction string

const (
	AuditActionRegister       AuditAction = "register"
	AuditActionLogin          AuditAction = "login"
	AuditActionPublishProduct AuditAction = "publish_product"
	AuditActionDeleteProduct  AuditAction = "delete_product"
	AuditActionCreateOrder    AuditAction = "create_order"
	AuditActionCancelOrder    AuditAction = "cancel_order"
	AuditActionCompleteOrder  AuditAction = "complete_order"
	AuditActionSubmitReview   AuditAction = "submit_review"
)

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}
