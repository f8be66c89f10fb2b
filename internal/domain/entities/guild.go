package entities

// DefaultNotifyMinutes is the reminder lead time for guilds without settings.
const DefaultNotifyMinutes = 15
