package models

// UpdateResult reports the outcome of a replace or single-field update.
type UpdateResult struct {
	Acknowledged  bool  `json:"isAcknowledged" example:"true"`
	MatchedCount  int64 `json:"matchedCount" example:"1"`
	ModifiedCount int64 `json:"modifiedCount" example:"1"`
	UpsertedID    any   `json:"upsertedId"`
}

// DeleteResult reports the outcome of a delete.
type DeleteResult struct {
	Acknowledged bool  `json:"isAcknowledged" example:"true"`
	DeletedCount int64 `json:"deletedCount" example:"1"`
}
