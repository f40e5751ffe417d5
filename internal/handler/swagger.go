package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/canteiro/canteiro-backend/docs"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the OpenAPI 3.0 rendition of the Swagger 2.0 document in docs
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server is an OpenAPI 3.0 server entry
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// registerDocs serves the Swagger UI under /swagger/ and the OpenAPI 3.0 document at /openapi.json.
// Neither requires a token.
func registerDocs(e *echo.Echo) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", ServeOpenAPI3Spec)
}

// ServeOpenAPI3Spec converts the registered Swagger 2.0 document and points its server at
// whichever host answered the request
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return NewInternalError(c, "Failed to read API description")
	}

	spec, err := convertToOpenAPI3([]byte(doc), Server{
		URL:         c.Scheme() + "://" + c.Request().Host + docs.SwaggerInfo.BasePath,
		Description: "This server",
	})
	if err != nil {
		return NewInternalError(c, "Failed to convert API description")
	}
	return c.JSON(http.StatusOK, spec)
}

func convertToOpenAPI3(doc []byte, servers ...Server) (*OpenAPI3Spec, error) {
	var swagger2 map[string]interface{}
	if err := json.Unmarshal(doc, &swagger2); err != nil {
		return nil, err
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	converted := make(map[string]interface{}, len(paths))
	for path, item := range paths {
		ops, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out := make(map[string]interface{}, len(ops))
		for method, op := range ops {
			if m, ok := op.(map[string]interface{}); ok {
				out[method] = convertOperation(m)
			}
		}
		converted[path] = out
	}

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = secDefs
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = transformRefs(definitions)
	}

	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      converted,
		Components: components,
	}, nil
}

// convertOperation moves body and formData parameters into requestBody and response
// schemas under content
func convertOperation(op map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(op))
	for k, v := range op {
		switch k {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[k] = transformRefs(v)
		}
	}

	var params []interface{}
	form := map[string]interface{}{}
	var formRequired []interface{}
	raw, _ := op["parameters"].([]interface{})
	for _, p := range raw {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			out["requestBody"] = map[string]interface{}{
				"description": param["description"],
				"required":    param["required"],
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{"schema": transformRefs(param["schema"])},
				},
			}
		case "formData":
			name, _ := param["name"].(string)
			schema := map[string]interface{}{"type": param["type"]}
			if param["type"] == "file" {
				schema = map[string]interface{}{"type": "string", "format": "binary"}
			}
			form[name] = schema
			if param["required"] == true {
				formRequired = append(formRequired, name)
			}
		default:
			params = append(params, transformParameter(param))
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}
	if len(form) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": form}
		if len(formRequired) > 0 {
			schema["required"] = formRequired
		}
		out["requestBody"] = map[string]interface{}{
			"required": true,
			"content":  map[string]interface{}{"multipart/form-data": map[string]interface{}{"schema": schema}},
		}
	}

	if responses, ok := op["responses"].(map[string]interface{}); ok {
		converted := make(map[string]interface{}, len(responses))
		for code, r := range responses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			entry := map[string]interface{}{"description": resp["description"]}
			if schema, ok := resp["schema"]; ok {
				entry["content"] = map[string]interface{}{
					"application/json": map[string]interface{}{"schema": transformRefs(schema)},
				}
			}
			converted[code] = entry
		}
		out["responses"] = converted
	}
	return out
}

// transformRefs rewrites #/definitions/ references to #/components/schemas/
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformParameter wraps the type fields of a path or query parameter in a schema
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = transformRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}
