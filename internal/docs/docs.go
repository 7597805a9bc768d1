// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Se mantiene a mano a partir de las anotaciones de los handlers
// (mismo formato que genera `swag init`).
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
                "tags": ["pets"],
                "summary": "Listar mascotas",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "mood", "in": "query"},
                    {"type": "boolean", "name": "adopted", "in": "query"},
                    {"type": "string", "name": "species", "in": "query"},
                    {"type": "string", "name": "personality", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "sort", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.petResponse"}}},
                    "400": {"description": "invalid filter", "schema": {"type": "string"}}
                }
            },
            "post": {
                "tags": ["pets"],
                "summary": "Crear mascota",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.createPetRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/filter": {
            "get": {
                "tags": ["pets"],
                "summary": "Filtrar por mood",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "mood", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pets.petResponse"}}},
                    "400": {"description": "invalid mood", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "tags": ["pets"],
                "summary": "Obtener mascota",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            },
            "put": {
                "tags": ["pets"],
                "summary": "Actualizar mascota",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/pets.updatePetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            },
            "delete": {
                "tags": ["pets"],
                "summary": "Borrar mascota",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.messageResponse"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/adopt": {
            "patch": {
                "tags": ["pets"],
                "summary": "Adoptar mascota",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pets.petResponse"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/events": {
            "get": {
                "tags": ["events"],
                "summary": "Historial de actividad de una mascota",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "types", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/events.eventResponse"}}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/species": {
            "get": {
                "tags": ["references"],
                "summary": "Listar species",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/references.ReferenceResponse"}}}
                }
            },
            "post": {
                "tags": ["references"],
                "summary": "Crear species",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/references.referenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/references.ReferenceResponse"}},
                    "409": {"description": "name already exists", "schema": {"type": "string"}}
                }
            }
        },
        "/species/{id}": {
            "delete": {
                "tags": ["references"],
                "summary": "Borrar species (reasigna a Unknown)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/references.deleteReferenceResponse"}},
                    "403": {"description": "protected record", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        },
        "/personalities": {
            "get": {
                "tags": ["references"],
                "summary": "Listar personalities",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/references.ReferenceResponse"}}}
                }
            },
            "post": {
                "tags": ["references"],
                "summary": "Crear personality",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/references.referenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/references.ReferenceResponse"}},
                    "409": {"description": "name already exists", "schema": {"type": "string"}}
                }
            }
        },
        "/personalities/{id}": {
            "delete": {
                "tags": ["references"],
                "summary": "Borrar personality (reasigna a Unknown)",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/references.deleteReferenceResponse"}},
                    "403": {"description": "protected record", "schema": {"type": "string"}},
                    "404": {"description": "not found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "references.ReferenceResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "references.referenceRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"}
            }
        },
        "references.deleteReferenceResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "reassigned_pet_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "pets.createPetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "personality": {"type": "string"},
                "age": {"type": "number"},
                "description": {"type": "string"},
                "image": {"type": "string"}
            }
        },
        "pets.updatePetRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "species": {"type": "string"},
                "personality": {"type": "string"},
                "age": {"type": "number"},
                "description": {"type": "string"},
                "image": {"type": "string"},
                "adopted": {"type": "boolean"}
            }
        },
        "pets.petResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"$ref": "#/definitions/references.ReferenceResponse"},
                "personality": {"$ref": "#/definitions/references.ReferenceResponse"},
                "age": {"type": "number"},
                "description": {"type": "string"},
                "description_html": {"type": "string"},
                "image": {"type": "string"},
                "mood": {"type": "string", "enum": ["Happy", "Excited", "Sad"]},
                "adopted": {"type": "boolean"},
                "adoption_date": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "pets.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "events.eventResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pet_id": {"type": "string"},
                "type": {"type": "string"},
                "source": {"type": "string"},
                "occurred_at": {"type": "string"},
                "recorded_at": {"type": "string"},
                "title": {"type": "string"},
                "notes": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Pet Adoption Catalog API",
	Description:      "Catálogo de mascotas en adopción: species/personalities, mood derivado y refresco diario.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
