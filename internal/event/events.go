package event

type Type string

const (
	ListedEvent            Type = "ListedEvent"
	PriceChangedEvent      Type = "PriceChangedEvent"
	DelistedEvent          Type = "DelistedEvent"
	SoldEvent              Type = "SoldEvent"
	FeeCollectedEvent      Type = "FeeCollectedEvent"
	CollectionAddedEvent   Type = "CollectionAddedEvent"
	CollectionRemovedEvent Type = "CollectionRemovedEvent"
)
