package domain

// EntityType discriminates the business entities which can be submitted
// for approval. Consuming domains add a value here and subscribe to the
// completion events; the approval engine itself stays domain agnostic.
type EntityType string

const (
	EntityTypeQuotation     EntityType = "QUOTATION"
	EntityTypePurchaseOrder EntityType = "PURCHASE_ORDER"
)

var knownEntityTypes = []EntityType{EntityTypeQuotation, EntityTypePurchaseOrder}

func (t EntityType) IsKnown() bool {
	for _, k := range knownEntityTypes {
		if t == k {
			return true
		}
	}
	return false
}
