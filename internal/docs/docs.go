// Package docs registra la spec swagger del API (la sirve /swagger/*).
// Cada operación tiene que coincidir con los @Router/@Summary de los handlers; docs_test lo verifica.
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
    "paths": {
        "/pets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Listar mis búsquedas",
                "parameters": [
                    {"type": "string", "description": "searching | found | cancelled", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Default 10, máximo 100", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Default 0", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.listSearchesResponse"}},
                    "401": {"description": "unauthorized", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Crear búsqueda de mascota",
                "parameters": [
                    {"description": "Datos de la mascota perdida", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/searches.createSearchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/searches.searchResponse"}},
                    "400": {"description": "validation_error", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "401": {"description": "unauthorized", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Obtener búsqueda",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.searchDetailResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar búsqueda",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/searches.updateSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.searchResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar búsqueda",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/searches.updateSearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.searchResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Eliminar búsqueda",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.messageResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/pets/{petID}/status": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Cambiar estado de búsqueda",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/searches.transitionStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.searchResponse"}},
                    "400": {"description": "status inválido", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/pets/{petID}/matches": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Listar matches de una búsqueda",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "description": "pending | confirmed | rejected", "name": "status", "in": "query"},
                    {"type": "integer", "description": "Default 20, máximo 100", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Default 0", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/matches.listMatchesResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "pet not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Registrar match (workers)",
                "parameters": [
                    {"type": "string", "description": "API key de workers internos", "name": "X-Worker-Key", "in": "header"},
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/matches.appendMatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/matches.Response"}},
                    "400": {"description": "validation_error", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "401": {"description": "worker key inválida", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/pets/{petID}/matches/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Estadísticas de matches",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/matches.statsResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/matches/{matchID}/review": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Revisar match",
                "parameters": [
                    {"type": "string", "name": "matchID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/matches.reviewMatchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/matches.reviewMatchResponse"}},
                    "400": {"description": "status inválido / match ya revisado", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/errors.Wire"}},
                    "404": {"description": "match not found", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        },
        "/me/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Estadísticas de la cuenta",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/searches.accountStatsResponse"}},
                    "401": {"description": "unauthorized", "schema": {"$ref": "#/definitions/errors.Wire"}}
                }
            }
        }
    },
    "definitions": {
        "errors.FieldError": {
            "type": "object",
            "properties": {"field": {"type": "string"}, "message": {"type": "string"}}
        },
        "errors.Wire": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/errors.FieldError"}}
            }
        },
        "matches.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pet_id": {"type": "string"},
                "source_platform": {"type": "string"},
                "confidence": {"type": "number"},
                "scraped_at": {"type": "string"},
                "post_url": {"type": "string"},
                "image_url": {"type": "string"},
                "snippet": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "confirmed", "rejected"]},
                "reviewed_at": {"type": "string"},
                "reviewed_by": {"type": "string"},
                "review_notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "matches.appendMatchRequest": {
            "type": "object",
            "required": ["confidence", "source_platform"],
            "properties": {
                "source_platform": {"type": "string"},
                "confidence": {"type": "number"},
                "scraped_at": {"type": "string"},
                "post_url": {"type": "string"},
                "image_url": {"type": "string"},
                "snippet": {"type": "string"}
            }
        },
        "matches.listMatchesResponse": {
            "type": "object",
            "properties": {
                "matches": {"type": "array", "items": {"$ref": "#/definitions/matches.Response"}},
                "pagination": {"$ref": "#/definitions/pagination"}
            }
        },
        "matches.reviewMatchRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["confirmed", "rejected"]},
                "notes": {"type": "string"}
            }
        },
        "matches.reviewMatchResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "match": {"$ref": "#/definitions/matches.Response"}}
        },
        "matches.statsResponse": {
            "type": "object",
            "properties": {
                "total": {"type": "integer"},
                "pending": {"type": "integer"},
                "confirmed": {"type": "integer"},
                "rejected": {"type": "integer"},
                "average_confidence": {"type": "integer"},
                "by_platform": {"type": "object", "additionalProperties": {"type": "integer"}},
                "last_match": {"type": "string"}
            }
        },
        "pagination": {
            "type": "object",
            "properties": {"limit": {"type": "integer"}, "offset": {"type": "integer"}, "total": {"type": "integer"}}
        },
        "searches.accountStatsResponse": {
            "type": "object",
            "properties": {
                "total_searches": {"type": "integer"},
                "active_searches": {"type": "integer"},
                "found_pets": {"type": "integer"}
            }
        },
        "searches.createSearchRequest": {
            "type": "object",
            "required": ["name", "species", "description", "images", "last_seen"],
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string", "enum": ["dog", "cat"]},
                "breed": {"type": "string"},
                "age": {"type": "integer"},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "last_seen": {"type": "object"},
                "search_config": {"type": "object"}
            }
        },
        "searches.messageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "searches.listSearchesResponse": {
            "type": "object",
            "properties": {
                "pets": {"type": "array", "items": {"$ref": "#/definitions/searches.searchResponse"}},
                "pagination": {"$ref": "#/definitions/pagination"}
            }
        },
        "searches.searchDetailResponse": {
            "type": "object",
            "properties": {
                "pet": {"$ref": "#/definitions/searches.searchResponse"},
                "recent_matches": {"type": "array", "items": {"$ref": "#/definitions/matches.Response"}}
            }
        },
        "searches.searchResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_user_id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["searching", "found", "cancelled"]},
                "found_at": {"type": "string"},
                "confirmed_match_count": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "searches.transitionStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["searching", "found", "cancelled"]},
                "notes": {"type": "string"}
            }
        },
        "searches.updateSearchRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "breed": {"type": "string"},
                "age": {"type": "integer"},
                "description": {"type": "string"},
                "images": {"type": "array", "items": {"type": "string"}},
                "last_seen": {"type": "object"},
                "search_config": {"type": "object"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "FindMyPet Search API",
	Description:      "Ciclo de vida de búsquedas de mascotas perdidas y revisión de matches.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
