package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
)

const OpenAPIPath = "/api/v1/openapi.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	// Health endpoint
	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("/ask").
			To(handler.Ask).
			Doc("Answer a question about CRM data").
			Metadata(restfulspec.KeyOpenAPITags, []string{"assistant"}).
			Param(ws.HeaderParameter(TenantHeader, "Organization the caller belongs to").DataType("string").Required(true)).
			Param(ws.HeaderParameter(RequestIDHeader, "Request id for tracing").DataType("string").Required(false)).
			Reads(AskRequest{}).
			Writes(models.Answer{}).
			Returns(200, "OK", models.Answer{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(401, "Unauthorized", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/validate").
			To(handler.Validate).
			Doc("Check a candidate query without running it").
			Metadata(restfulspec.KeyOpenAPITags, []string{"validation"}).
			Reads(ValidateRequest{}).
			Writes(ValidateResponse{}).
			Returns(200, "OK", ValidateResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document for every registered service.
// Call it after RegisterRoutes.
func RegisterOpenAPI(container *restful.Container) {
	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       OpenAPIPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "CRM Assistant API",
			Description: "Answers CRM questions through validated, tenant-scoped read-only queries",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "assistant", Description: "Question answering"}},
		{TagProps: spec.TagProps{Name: "validation", Description: "Query validation"}},
	}
}
