package models

// Table names of the farm backup schema read by the viewer.
const (
	TableAnimals           = "animals"
	TableFeedUsage         = "feed_usage"
	TableFeedTypes         = "feed_types"
	TableStorages          = "storages"
	TableInventoryPools    = "inventory_pools"
	TablePoolTransactions  = "inventory_pool_transactions"
	TableInventoryLots     = "inventory_lots"
	TableLotTransactions   = "inventory_lot_transactions"
	TableBreedingSessions  = "breeding_sessions"
	TableBreedingExposures = "breeding_exposures"
)

// Photo reference columns.
const (
	AnimalPhotoField   = "photo_path"
	ExposurePhotoField = "photo_path"
)
