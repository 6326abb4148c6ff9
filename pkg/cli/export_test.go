package cli

var (
	GetIndexConfig   = getIndexConfig
	PrintRoomBlocks  = printRoomBlocks
	PrintChangeEvent = printChangeEvent
)
