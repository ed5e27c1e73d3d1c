package randomuser

import "github.com/xeipuuv/gojsonschema"

// responseSchema accepts both the legacy {user:{name}} and current {name} result shapes.
const responseSchema = `{
  "type": "object",
  "required": ["results"],
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "anyOf": [
          {
            "required": ["user"],
            "properties": {
              "user": {
                "type": "object",
                "required": ["name"],
                "properties": {"name": {"$ref": "#/definitions/name"}}
              }
            }
          },
          {
            "required": ["name"],
            "properties": {"name": {"$ref": "#/definitions/name"}}
          }
        ]
      }
    }
  },
  "definitions": {
    "name": {
      "type": "object",
      "required": ["first", "last"],
      "properties": {
        "first": {"type": "string"},
        "last": {"type": "string"}
      }
    }
  }
}`

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema)
