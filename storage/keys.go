package storage

// Global keys.
const (
	KeyConfig       = "cafe-config"
	KeyAdminAuthed  = "cafe-admin-authed"
	KeyOrderHistory = "cafe-order-history"
	KeyExpenses     = "cafe-expenses"
	KeyQueueCounter = "cafe-queue-counter"
)

// CartKey is the cart document for one session.
func CartKey(session string) string { return "cafe-cart:" + session }

// FavoritesKey is the favorites document for one session.
func FavoritesKey(session string) string { return "cafe-favorites:" + session }
