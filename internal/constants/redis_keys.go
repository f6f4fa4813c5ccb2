package constants

// Redis key prefixes and formats.
// Naming convention: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix is the shared prefix for every key.
	AppPrefix = "app"

	// AuthModulePrefix covers session keys.
	AuthModulePrefix = "auth"
	// FileModulePrefix covers dedup keys.
	FileModulePrefix = "file"
	// ChatModulePrefix covers chatbot conversation keys.
	ChatModulePrefix = "chat"
	// StatsModulePrefix covers cached aggregates.
	StatsModulePrefix = "stats"

	// KeySession maps a session token to a user id (STRING).
	// Format: app:auth:session:{token}
	KeySession = AppPrefix + ":" + AuthModulePrefix + ":session:%s"

	// KeyFileMD5Set is the set of raw resume file MD5s, used for fast
	// duplicate rejection on upload (SET).
	// Format: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":dedup_set"

	// KeyTextMD5ToCandidate maps extracted-text MD5 to the candidate that
	// first produced it (STRING).
	// Format: app:file:text_md5:{md5}
	KeyTextMD5ToCandidate = AppPrefix + ":" + FileModulePrefix + ":text_md5:%s"

	// KeyChatHistory is the per-user chatbot conversation history (LIST).
	// Format: app:chat:history:{userID}
	KeyChatHistory = AppPrefix + ":" + ChatModulePrefix + ":history:%s"

	// KeyDashboardStats caches the dashboard aggregate payload (STRING).
	// Format: app:stats:dashboard
	KeyDashboardStats = AppPrefix + ":" + StatsModulePrefix + ":dashboard"
)
