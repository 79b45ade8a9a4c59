package contextkeys

// Собственный тип ключа, чтобы не пересекаться с чужими значениями в context
type contextKey string

// DBContextKey - ключ, под которым лежит *gorm.DB (пул или транзакция).
// Тесты кладут сюда транзакцию, DBMiddleware отдаёт её хендлерам.
const DBContextKey = contextKey("db")

// Ключи gin.Context, которые выставляет AuthMiddleware
const (
	UserIDKey = "userID"
	RoleKey   = "role"
)
