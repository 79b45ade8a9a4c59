// Package docs - OpenAPI описание API, отдаётся через /swagger/index.html
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/users/register": {"post": {"tags": ["users"], "summary": "Регистрация по email", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation error"}, "409": {"description": "Email already exists"}}}},
        "/users/login": {"post": {"tags": ["users"], "summary": "Вход, выдаёт access и refresh", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/users/google": {"post": {"tags": ["users"], "summary": "Вход через Google ID token", "responses": {"200": {"description": "OK"}}}},
        "/users/token/refresh": {"post": {"tags": ["users"], "summary": "Ротация refresh токена", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid token"}}}},
        "/users/logout": {"post": {"tags": ["users"], "security": [{"BearerAuth": []}], "summary": "Отзыв refresh токена", "responses": {"205": {"description": "Reset Content"}}}},
        "/users/me": {"get": {"tags": ["users"], "security": [{"BearerAuth": []}], "summary": "Текущий пользователь", "responses": {"200": {"description": "OK"}}}},
        "/profiles": {"get": {"tags": ["profiles"], "summary": "Лента анкет", "responses": {"200": {"description": "OK"}}}},
        "/profiles/{id}": {"get": {"tags": ["profiles"], "summary": "Анкета, просмотр фиксируется", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/profiles/me": {"get": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "summary": "Своя анкета", "responses": {"200": {"description": "OK"}}}, "put": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "summary": "Обновить анкету", "responses": {"200": {"description": "OK"}}}},
        "/profiles/me/images": {"post": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"], "summary": "Загрузить фото", "responses": {"201": {"description": "Created"}}}},
        "/profiles/dashboard": {"get": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "summary": "Статистика популярности", "responses": {"200": {"description": "OK"}}}},
        "/profiles/{id}/like": {"post": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "summary": "Лайк", "responses": {"200": {"description": "OK"}}}, "delete": {"tags": ["profiles"], "security": [{"BearerAuth": []}], "summary": "Снять лайк", "responses": {"200": {"description": "OK"}}}},
        "/search": {"get": {"tags": ["search"], "summary": "Поиск анкет по фильтрам", "responses": {"200": {"description": "OK"}}}, "post": {"tags": ["search"], "summary": "Поиск анкет, фильтры в теле", "responses": {"200": {"description": "OK"}}}},
        "/blog/posts": {"get": {"tags": ["blog"], "summary": "Опубликованные статьи", "responses": {"200": {"description": "OK"}}}},
        "/blog/posts/{slug}": {"get": {"tags": ["blog"], "summary": "Статья с комментариями и рейтингом", "parameters": [{"name": "slug", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/blog/posts/{slug}/comments": {"post": {"tags": ["blog"], "security": [{"BearerAuth": []}], "summary": "Комментарий на модерацию", "responses": {"201": {"description": "Created"}}}},
        "/blog/posts/{slug}/ratings": {"post": {"tags": ["blog"], "security": [{"BearerAuth": []}], "summary": "Оценка 1-5", "responses": {"200": {"description": "OK"}}}},
        "/messages/threads": {"get": {"tags": ["messages"], "security": [{"BearerAuth": []}], "summary": "Диалоги", "responses": {"200": {"description": "OK"}}}},
        "/messages/threads/{id}/messages": {"post": {"tags": ["messages"], "security": [{"BearerAuth": []}], "summary": "Отправить сообщение", "responses": {"201": {"description": "Created"}}}},
        "/messages/poll": {"get": {"tags": ["messages"], "security": [{"BearerAuth": []}], "summary": "Новые сообщения после last_id", "responses": {"200": {"description": "OK"}}}},
        "/messages/ws": {"get": {"tags": ["messages"], "security": [{"BearerAuth": []}], "summary": "WebSocket доставка сообщений", "responses": {"101": {"description": "Switching Protocols"}}}},
        "/payments/create-transaction": {"post": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Создать транзакцию FedaPay", "responses": {"201": {"description": "Created"}}}},
        "/payments/webhook/": {"post": {"tags": ["payments"], "summary": "Webhook FedaPay (HMAC подпись)", "responses": {"200": {"description": "OK"}, "403": {"description": "Invalid signature"}}}},
        "/payments/check-status/{id}": {"get": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Статус транзакции", "responses": {"200": {"description": "OK"}}}},
        "/payments/subscription": {"get": {"tags": ["payments"], "security": [{"BearerAuth": []}], "summary": "Премиум подписка", "responses": {"200": {"description": "OK"}}}},
        "/documents/{id}/download": {"get": {"tags": ["documents"], "security": [{"BearerAuth": []}], "summary": "Ссылка на скачивание", "responses": {"200": {"description": "OK"}, "402": {"description": "Payment required"}}}},
        "/contact": {"post": {"tags": ["contact"], "summary": "Форма обратной связи", "responses": {"201": {"description": "Created"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rencontre API",
	Description:      "Сайт знакомств: анкеты, сообщения, блог, платежи FedaPay.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
