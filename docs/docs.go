// Package docs holds the hand-maintained OpenAPI description served at /swagger/doc.json.
// Keep it in sync with the handler annotations when routes change.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in and receive a bearer token",
                "parameters": [
                    {"description": "Credentials", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new player",
                "parameters": [
                    {"description": "Registration data", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/chips": {
            "get": {
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "All chips with their descriptions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/chips/active": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "The current user's active gameweek chips keyed by gameweek",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/fixtures": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Fixtures of a gameweek (current gameweek when omitted)",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Schedule a fixture (admin)",
                "parameters": [
                    {"description": "Fixture", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.CreateFixtureInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/fixtures/{fixtureID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Fixture by id",
                "parameters": [
                    {"type": "integer", "description": "Fixture ID", "name": "fixtureID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/fixtures/{fixtureID}/result": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "Record the final result and settle predictions (admin)",
                "parameters": [
                    {"type": "integer", "description": "Fixture ID", "name": "fixtureID", "in": "path", "required": true},
                    {"description": "Final result", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.FixtureResult"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/gameweeks/current": {
            "get": {
                "produces": ["application/json"],
                "tags": ["fixtures"],
                "summary": "The gameweek players should be predicting",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/gameweeks/{gameweek}/chip-sync": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "Attach the missing gameweek chips to pending predictions",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/chips.SyncResult"}}
                }
            }
        },
        "/gameweeks/{gameweek}/chip-validation": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "Pending predictions missing the gameweek's active chips",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/chips.ValidationResult"}}
                }
            }
        },
        "/gameweeks/{gameweek}/chip-validation/dismiss": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "Hide predictions from the chip validation warning",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "path", "required": true},
                    {"description": "Predictions to dismiss", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.dismissRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/chips.ValidationResult"}}
                }
            }
        },
        "/gameweeks/{gameweek}/chips": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["chips"],
                "summary": "Activate a chip for a whole gameweek",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "path", "required": true},
                    {"description": "Chip", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.activateChipRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/gameweeks/{gameweek}/chips/{chipID}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["chips"],
                "summary": "Deactivate a gameweek chip",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "path", "required": true},
                    {"type": "string", "description": "Chip ID", "name": "chipID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/leagues": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "Leagues the current user belongs to",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "Create a private league; the creator joins it",
                "parameters": [
                    {"description": "League", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.createLeagueRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/leagues/join": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "Join a league by its code",
                "parameters": [
                    {"description": "Join code", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.joinLeagueRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/leagues/{leagueID}/standings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["leagues"],
                "summary": "Ranked league table",
                "parameters": [
                    {"type": "integer", "description": "League ID", "name": "leagueID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/predictions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "The current user's predictions",
                "parameters": [
                    {"type": "integer", "description": "Gameweek number", "name": "gameweek", "in": "query"},
                    {"type": "string", "description": "pending or completed", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Create or replace the prediction for a fixture",
                "parameters": [
                    {"description": "Prediction", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.PredictionInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/predictions/{predictionID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Prediction with its points breakdown",
                "parameters": [
                    {"type": "integer", "description": "Prediction ID", "name": "predictionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": true}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["predictions"],
                "summary": "Edit a prediction before its deadline",
                "parameters": [
                    {"type": "integer", "description": "Prediction ID", "name": "predictionID", "in": "path", "required": true},
                    {"description": "Prediction", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.PredictionInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Current user's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/users/me/avatar": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Upload or replace the avatar",
                "parameters": [
                    {"type": "file", "description": "JPEG, PNG or WebP image up to 5MB", "name": "avatar", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}},
                    "415": {"description": "Unsupported Media Type", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "chips.SyncResult": {
            "type": "object",
            "properties": {
                "chip_names": {"type": "array", "items": {"type": "string"}},
                "error": {"type": "string"},
                "failed_ids": {"type": "array", "items": {"type": "integer"}},
                "success": {"type": "boolean"},
                "synced": {"type": "integer"},
                "synced_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "chips.ValidationResult": {
            "type": "object",
            "properties": {
                "active_chip_names": {"type": "array", "items": {"type": "string"}},
                "count": {"type": "integer"},
                "predictions": {"type": "array", "items": {"type": "object"}},
                "should_show": {"type": "boolean"},
                "summary": {"type": "string"}
            }
        },
        "handlers.activateChipRequest": {
            "type": "object",
            "required": ["chip_id"],
            "properties": {
                "chip_id": {"type": "string", "enum": ["doubleDown", "wildcard", "opportunist", "scorerFocus", "defensePlusPlus", "allInWeek"]}
            }
        },
        "handlers.createLeagueRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 64}
            }
        },
        "handlers.dismissRequest": {
            "type": "object",
            "required": ["prediction_ids"],
            "properties": {
                "prediction_ids": {"type": "array", "minItems": 1, "items": {"type": "integer"}}
            }
        },
        "handlers.joinLeagueRequest": {
            "type": "object",
            "required": ["join_code"],
            "properties": {
                "join_code": {"type": "string"}
            }
        },
        "models.FixtureResult": {
            "type": "object",
            "properties": {
                "away_score": {"type": "integer", "minimum": 0},
                "away_scorers": {"type": "array", "items": {"type": "string"}},
                "home_score": {"type": "integer", "minimum": 0},
                "home_scorers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.CreateFixtureInput": {
            "type": "object",
            "required": ["away_team", "gameweek", "home_team", "kickoff_at"],
            "properties": {
                "away_team": {"type": "string", "maxLength": 64},
                "external_ref": {"type": "string", "maxLength": 64},
                "gameweek": {"type": "integer", "minimum": 1},
                "home_team": {"type": "string", "maxLength": 64},
                "kickoff_at": {"type": "string"}
            }
        },
        "services.LoginInput": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.PredictionInput": {
            "type": "object",
            "properties": {
                "away_score": {"type": "integer", "maximum": 99, "minimum": 0},
                "away_scorers": {"type": "array", "items": {"type": "string"}},
                "chips": {"type": "array", "items": {"type": "string"}},
                "fixture_id": {"type": "integer", "minimum": 1},
                "home_score": {"type": "integer", "maximum": 99, "minimum": 0},
                "home_scorers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "required": ["email", "nickname", "password"],
            "properties": {
                "email": {"type": "string"},
                "nickname": {"type": "string", "maxLength": 32, "minLength": 3},
                "password": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo is registered with swag under the default instance name.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Prediction League API",
	Description:      "Score predictions, gameweek chips and private leagues.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
