package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"flowapp/internal/board"
	"flowapp/internal/domain"
	"flowapp/internal/engine"
	"flowapp/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"transition_denied"`
	Message string         `json:"message" example:"transition not allowed"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope used on every failure response.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the FlowApp API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			// Schema-level request problems are the client's fault, not a
			// workflow rule firing.
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("FlowApp API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuth(group, cfg.Engine, cfg.Auth)
	registerVendors(group, cfg.Engine)
	registerUsers(group, cfg.Engine)
	registerRestaurants(group, cfg.Engine)
	registerBoardTemplates(group, cfg.Engine)
	registerMenuTemplates(group, cfg.Engine)
	registerMenuItems(group, cfg.Engine)
	registerOrders(group, cfg.Engine)
	registerBoardView(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repo.ErrConflict):
		return newAPIError(http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, engine.ErrDenied):
		return newAPIError(http.StatusUnprocessableEntity, "transition_denied", err.Error(), nil)
	case errors.Is(err, engine.ErrReasonRequired):
		return newAPIError(http.StatusUnprocessableEntity, "reason_required", err.Error(), nil)
	case errors.Is(err, engine.ErrConfirmationRequired):
		return newAPIError(http.StatusUnprocessableEntity, "confirmation_required", err.Error(), nil)
	case errors.Is(err, engine.ErrUnknownStatus), errors.Is(err, engine.ErrUnknownColumn):
		return newAPIError(http.StatusUnprocessableEntity, "validation_failed", err.Error(), nil)
	case errors.Is(err, engine.ErrEmptyOrder):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "missing") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>FlowApp API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerVendors(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-vendor",
		Method:        http.MethodPost,
		Path:          "/vendors",
		Summary:       "Create vendor",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body struct {
			ID   string `json:"id,omitempty"`
			Name string `json:"name"`
		} `json:"body"`
	}) (*struct {
		Body VendorResponse `json:"body"`
	}, error) {
		if err := requireRole(ctx, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		v, err := e.CreateVendor(ctx, input.Body.ID, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body VendorResponse `json:"body"`
		}{Body: vendorResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-vendors",
		Method:      http.MethodGet,
		Path:        "/vendors",
		Summary:     "List vendors",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []VendorResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListVendors(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []VendorResponse `json:"body"`
		}{Body: mapVendors(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-vendor",
		Method:      http.MethodGet,
		Path:        "/vendors/{id}",
		Summary:     "Get vendor",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body VendorResponse `json:"body"`
	}, error) {
		v, err := e.Repo.GetVendor(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body VendorResponse `json:"body"`
		}{Body: vendorResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-vendor",
		Method:      http.MethodPatch,
		Path:        "/vendors/{id}",
		Summary:     "Update vendor",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Name string `json:"name"`
		} `json:"body"`
	}) (*struct {
		Body VendorResponse `json:"body"`
	}, error) {
		if err := requireRole(ctx, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		if err := e.Repo.UpdateVendor(ctx, domain.Vendor{ID: input.ID, Name: input.Body.Name}); err != nil {
			return nil, handleError(err)
		}
		v, err := e.Repo.GetVendor(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body VendorResponse `json:"body"`
		}{Body: vendorResponse(v)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-vendor",
		Method:      http.MethodDelete,
		Path:        "/vendors/{id}",
		Summary:     "Delete vendor",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireRole(ctx, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteVendor(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerUsers(api huma.API, e engine.Engine) {
	type userBody struct {
		ID           string `json:"id,omitempty"`
		Name         string `json:"name"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		Role         string `json:"role" enum:"consumer,vendor,restaurant_admin,super_admin"`
		VendorID     string `json:"vendor_id,omitempty"`
		RestaurantID string `json:"restaurant_id,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create user",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body userBody `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		if err := requireRole(ctx, domain.RoleVendor, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		if input.Body.Name == "" || input.Body.Username == "" || input.Body.Password == "" || input.Body.Role == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name, username, password, and role are required", nil)
		}
		u, err := e.CreateUser(ctx, domain.User{
			ID:           input.Body.ID,
			Name:         input.Body.Name,
			Username:     input.Body.Username,
			Password:     input.Body.Password,
			Role:         input.Body.Role,
			VendorID:     input.Body.VendorID,
			RestaurantID: input.Body.RestaurantID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
		Errors:      []int{http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []UserResponse `json:"body"`
	}, error) {
		if err := requireRole(ctx, domain.RoleVendor, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		items, err := e.Repo.ListUsers(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []UserResponse `json:"body"`
		}{Body: mapUsers(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get user",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		u, err := e.Repo.GetUser(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPatch,
		Path:        "/users/{id}",
		Summary:     "Update user",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body userBody `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		if err := requireRole(ctx, domain.RoleVendor, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		existing, err := e.Repo.GetUser(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Name != "" {
			existing.Name = input.Body.Name
		}
		if input.Body.Username != "" {
			existing.Username = input.Body.Username
		}
		if input.Body.Password != "" {
			existing.Password = input.Body.Password
		}
		if input.Body.Role != "" {
			existing.Role = input.Body.Role
		}
		if input.Body.VendorID != "" {
			existing.VendorID = input.Body.VendorID
		}
		if input.Body.RestaurantID != "" {
			existing.RestaurantID = input.Body.RestaurantID
		}
		if err := e.Repo.UpdateUser(ctx, existing); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: userResponse(existing)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/users/{id}",
		Summary:     "Delete user",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireRole(ctx, domain.RoleVendor, domain.RoleSuperAdmin); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteUser(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerRestaurants(api huma.API, e engine.Engine) {
	type restaurantBody struct {
		ID              string   `json:"id,omitempty"`
		VendorID        string   `json:"vendor_id"`
		Name            string   `json:"name"`
		Description     string   `json:"description,omitempty"`
		BoardTemplateID *string  `json:"board_template_id,omitempty"`
		MenuTemplateIDs []string `json:"menu_template_ids,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-restaurant",
		Method:        http.MethodPost,
		Path:          "/restaurants",
		Summary:       "Create restaurant",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body restaurantBody `json:"body"`
	}) (*struct {
		Body RestaurantResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" || input.Body.VendorID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name and vendor_id are required", nil)
		}
		r, err := e.CreateRestaurant(ctx, domain.Restaurant{
			ID:              input.Body.ID,
			VendorID:        input.Body.VendorID,
			Name:            input.Body.Name,
			Description:     input.Body.Description,
			BoardTemplateID: input.Body.BoardTemplateID,
			MenuTemplateIDs: input.Body.MenuTemplateIDs,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RestaurantResponse `json:"body"`
		}{Body: restaurantResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-restaurants",
		Method:      http.MethodGet,
		Path:        "/restaurants",
		Summary:     "List restaurants",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []RestaurantResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListRestaurants(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []RestaurantResponse `json:"body"`
		}{Body: mapRestaurants(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-restaurant",
		Method:      http.MethodGet,
		Path:        "/restaurants/{id}",
		Summary:     "Get restaurant",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body RestaurantResponse `json:"body"`
	}, error) {
		r, err := e.Repo.GetRestaurant(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RestaurantResponse `json:"body"`
		}{Body: restaurantResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-restaurant",
		Method:      http.MethodPatch,
		Path:        "/restaurants/{id}",
		Summary:     "Update restaurant",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Name            *string  `json:"name,omitempty"`
			Description     *string  `json:"description,omitempty"`
			BoardTemplateID *string  `json:"board_template_id,omitempty"`
			MenuTemplateIDs []string `json:"menu_template_ids,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body RestaurantResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		r, err := e.Repo.GetRestaurant(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Name != nil {
			r.Name = *input.Body.Name
		}
		if input.Body.Description != nil {
			r.Description = *input.Body.Description
		}
		if input.Body.BoardTemplateID != nil {
			if *input.Body.BoardTemplateID == "" {
				r.BoardTemplateID = nil
			} else {
				if _, err := e.Repo.GetBoardTemplate(ctx, *input.Body.BoardTemplateID); err != nil {
					return nil, handleError(err)
				}
				r.BoardTemplateID = input.Body.BoardTemplateID
			}
		}
		if input.Body.MenuTemplateIDs != nil {
			r.MenuTemplateIDs = input.Body.MenuTemplateIDs
		}
		if err := e.Repo.UpdateRestaurant(ctx, r); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RestaurantResponse `json:"body"`
		}{Body: restaurantResponse(r)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-restaurant",
		Method:      http.MethodDelete,
		Path:        "/restaurants/{id}",
		Summary:     "Delete restaurant",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteRestaurant(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerBoardTemplates(api huma.API, e engine.Engine) {
	type boardTemplateBody struct {
		ID       string       `json:"id,omitempty"`
		VendorID string       `json:"vendor_id"`
		Name     string       `json:"name"`
		Config   board.Config `json:"config"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-board-template",
		Method:        http.MethodPost,
		Path:          "/board-templates",
		Summary:       "Create board template",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body boardTemplateBody `json:"body"`
	}) (*struct {
		Body BoardTemplateResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" || input.Body.VendorID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name and vendor_id are required", nil)
		}
		if errs := input.Body.Config.Validate(); board.HasErrors(errs) {
			return nil, newAPIError(http.StatusUnprocessableEntity, "invalid_board_config", "board config is invalid", map[string]any{"errors": errs})
		}
		t, err := e.CreateBoardTemplate(ctx, input.Body.ID, input.Body.VendorID, input.Body.Name, &input.Body.Config)
		if err != nil {
			return nil, handleError(err)
		}
		resp, err := boardTemplateResponse(t)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BoardTemplateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-board-templates",
		Method:      http.MethodGet,
		Path:        "/board-templates",
		Summary:     "List board templates",
	}, func(ctx context.Context, input *struct {
		VendorID string `query:"vendor_id"`
	}) (*struct {
		Body []BoardTemplateResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListBoardTemplates(ctx, input.VendorID)
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]BoardTemplateResponse, 0, len(items))
		for _, t := range items {
			r, err := boardTemplateResponse(t)
			if err != nil {
				return nil, handleError(err)
			}
			res = append(res, r)
		}
		return &struct {
			Body []BoardTemplateResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board-template",
		Method:      http.MethodGet,
		Path:        "/board-templates/{id}",
		Summary:     "Get board template",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body BoardTemplateResponse `json:"body"`
	}, error) {
		t, err := e.Repo.GetBoardTemplate(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		resp, err := boardTemplateResponse(t)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BoardTemplateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-board-template",
		Method:      http.MethodPut,
		Path:        "/board-templates/{id}",
		Summary:     "Update board template",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Name   string       `json:"name"`
			Config board.Config `json:"config"`
		} `json:"body"`
	}) (*struct {
		Body BoardTemplateResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		if errs := input.Body.Config.Validate(); board.HasErrors(errs) {
			return nil, newAPIError(http.StatusUnprocessableEntity, "invalid_board_config", "board config is invalid", map[string]any{"errors": errs})
		}
		t, err := e.UpdateBoardTemplate(ctx, input.ID, input.Body.Name, &input.Body.Config)
		if err != nil {
			return nil, handleError(err)
		}
		resp, err := boardTemplateResponse(t)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BoardTemplateResponse `json:"body"`
		}{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-board-template",
		Method:      http.MethodDelete,
		Path:        "/board-templates/{id}",
		Summary:     "Delete board template",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteBoardTemplate(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerMenuTemplates(api huma.API, e engine.Engine) {
	type menuTemplateBody struct {
		ID       string               `json:"id,omitempty"`
		VendorID string               `json:"vendor_id"`
		Name     string               `json:"name"`
		Sections []domain.MenuSection `json:"sections,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-menu-template",
		Method:        http.MethodPost,
		Path:          "/menu-templates",
		Summary:       "Create menu template",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body menuTemplateBody `json:"body"`
	}) (*struct {
		Body MenuTemplateResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" || input.Body.VendorID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name and vendor_id are required", nil)
		}
		t, err := e.CreateMenuTemplate(ctx, domain.MenuTemplate{
			ID:       input.Body.ID,
			VendorID: input.Body.VendorID,
			Name:     input.Body.Name,
			Sections: input.Body.Sections,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MenuTemplateResponse `json:"body"`
		}{Body: menuTemplateResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-menu-templates",
		Method:      http.MethodGet,
		Path:        "/menu-templates",
		Summary:     "List menu templates",
	}, func(ctx context.Context, input *struct {
		VendorID string `query:"vendor_id"`
	}) (*struct {
		Body []MenuTemplateResponse `json:"body"`
	}, error) {
		items, err := e.Repo.ListMenuTemplates(ctx, input.VendorID)
		if err != nil {
			return nil, handleError(err)
		}
		res := make([]MenuTemplateResponse, 0, len(items))
		for _, t := range items {
			res = append(res, menuTemplateResponse(t))
		}
		return &struct {
			Body []MenuTemplateResponse `json:"body"`
		}{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-menu-template",
		Method:      http.MethodGet,
		Path:        "/menu-templates/{id}",
		Summary:     "Get menu template",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body MenuTemplateResponse `json:"body"`
	}, error) {
		t, err := e.Repo.GetMenuTemplate(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MenuTemplateResponse `json:"body"`
		}{Body: menuTemplateResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-menu-template",
		Method:      http.MethodPut,
		Path:        "/menu-templates/{id}",
		Summary:     "Update menu template",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Name     string               `json:"name"`
			Sections []domain.MenuSection `json:"sections,omitempty"`
		} `json:"body"`
	}) (*struct {
		Body MenuTemplateResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name is required", nil)
		}
		t, err := e.Repo.GetMenuTemplate(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		t.Name = input.Body.Name
		t.Sections = input.Body.Sections
		if err := e.Repo.UpdateMenuTemplate(ctx, t); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MenuTemplateResponse `json:"body"`
		}{Body: menuTemplateResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-menu-template",
		Method:      http.MethodDelete,
		Path:        "/menu-templates/{id}",
		Summary:     "Delete menu template",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteMenuTemplate(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerMenuItems(api huma.API, e engine.Engine) {
	type menuItemBody struct {
		ID          string  `json:"id,omitempty"`
		VendorID    string  `json:"vendor_id"`
		Name        string  `json:"name"`
		Description string  `json:"description,omitempty"`
		Price       float64 `json:"price"`
		ImageURL    string  `json:"image_url,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID:   "create-menu-item",
		Method:        http.MethodPost,
		Path:          "/menu-items",
		Summary:       "Create menu item",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusForbidden},
	}, func(ctx context.Context, input *struct {
		Body menuItemBody `json:"body"`
	}) (*struct {
		Body domain.MenuItemTemplate `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Body.Name == "" || input.Body.VendorID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "name and vendor_id are required", nil)
		}
		if input.Body.Price < 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "price must not be negative", nil)
		}
		it, err := e.CreateMenuItem(ctx, domain.MenuItemTemplate{
			ID:          input.Body.ID,
			VendorID:    input.Body.VendorID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			Price:       input.Body.Price,
			ImageURL:    input.Body.ImageURL,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.MenuItemTemplate `json:"body"`
		}{Body: it}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-menu-items",
		Method:      http.MethodGet,
		Path:        "/menu-items",
		Summary:     "List menu items",
	}, func(ctx context.Context, input *struct {
		VendorID string `query:"vendor_id"`
	}) (*struct {
		Body []domain.MenuItemTemplate `json:"body"`
	}, error) {
		items, err := e.Repo.ListMenuItemTemplates(ctx, input.VendorID)
		if err != nil {
			return nil, handleError(err)
		}
		if items == nil {
			items = []domain.MenuItemTemplate{}
		}
		return &struct {
			Body []domain.MenuItemTemplate `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-menu-item",
		Method:      http.MethodGet,
		Path:        "/menu-items/{id}",
		Summary:     "Get menu item",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body domain.MenuItemTemplate `json:"body"`
	}, error) {
		it, err := e.Repo.GetMenuItemTemplate(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.MenuItemTemplate `json:"body"`
		}{Body: it}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-menu-item",
		Method:      http.MethodPut,
		Path:        "/menu-items/{id}",
		Summary:     "Update menu item",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string       `path:"id"`
		Body menuItemBody `json:"body"`
	}) (*struct {
		Body domain.MenuItemTemplate `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		it, err := e.Repo.GetMenuItemTemplate(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		if input.Body.Name != "" {
			it.Name = input.Body.Name
		}
		it.Description = input.Body.Description
		if input.Body.Price < 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "price must not be negative", nil)
		}
		if input.Body.Price > 0 {
			it.Price = input.Body.Price
		}
		it.ImageURL = input.Body.ImageURL
		if err := e.Repo.UpdateMenuItemTemplate(ctx, it); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.MenuItemTemplate `json:"body"`
		}{Body: it}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-menu-item",
		Method:      http.MethodDelete,
		Path:        "/menu-items/{id}",
		Summary:     "Delete menu item",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if err := e.Repo.DeleteMenuItemTemplate(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerOrders(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-order",
		Method:        http.MethodPost,
		Path:          "/orders",
		Summary:       "Checkout",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body struct {
			RestaurantID string             `json:"restaurant_id"`
			Items        []domain.OrderItem `json:"items"`
		} `json:"body"`
	}) (*struct {
		Body OrderResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.RestaurantID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "restaurant_id is required", nil)
		}
		o, err := e.Checkout(ctx, engine.CheckoutDraft{
			RestaurantID: input.Body.RestaurantID,
			Items:        input.Body.Items,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OrderResponse `json:"body"`
		}{Body: orderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-order",
		Method:      http.MethodGet,
		Path:        "/orders/{id}",
		Summary:     "Get order",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body OrderResponse `json:"body"`
	}, error) {
		o, err := e.Repo.GetOrder(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OrderResponse `json:"body"`
		}{Body: orderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-restaurant-orders",
		Method:      http.MethodGet,
		Path:        "/restaurants/{id}/orders",
		Summary:     "List restaurant orders",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []OrderResponse `json:"body"`
	}, error) {
		if _, err := e.Repo.GetRestaurant(ctx, input.ID); err != nil {
			return nil, handleError(err)
		}
		items, err := e.Repo.ListOrdersByRestaurant(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []OrderResponse `json:"body"`
		}{Body: mapOrders(items)}, nil
	})

	type transitionBody struct {
		TargetStatusID string `json:"target_status_id"`
		Reason         string `json:"reason,omitempty"`
		Force          bool   `json:"force,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "transition-order",
		Method:      http.MethodPost,
		Path:        "/orders/{id}/transition",
		Summary:     "Move order to a status",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID   string         `path:"id"`
		Body transitionBody `json:"body"`
	}) (*struct {
		Body OrderResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.TargetStatusID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "target_status_id is required", nil)
		}
		o, err := e.ApplyTransition(ctx, engine.ApplyOpts{
			OrderID:        input.ID,
			TargetStatusID: input.Body.TargetStatusID,
			Reason:         input.Body.Reason,
			ActorID:        actorID,
			Force:          input.Body.Force,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OrderResponse `json:"body"`
		}{Body: orderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "decide-order-transition",
		Method:      http.MethodGet,
		Path:        "/orders/{id}/transition",
		Summary:     "Preview a status move",
		Errors:      []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		ID     string `path:"id"`
		Target string `query:"target_status_id"`
	}) (*struct {
		Body DecisionResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		if input.Target == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "target_status_id is required", nil)
		}
		d, err := e.RequestTransition(ctx, input.ID, input.Target)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body DecisionResponse `json:"body"`
		}{Body: decisionResponse(d)}, nil
	})

	type dropBody struct {
		ColumnID string `json:"column_id"`
		Reason   string `json:"reason,omitempty"`
		Force    bool   `json:"force,omitempty"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "drop-order",
		Method:      http.MethodPost,
		Path:        "/orders/{id}/drop",
		Summary:     "Drop order onto a board column",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID   string   `path:"id"`
		Body dropBody `json:"body"`
	}) (*struct {
		Body OrderResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.ColumnID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "column_id is required", nil)
		}
		o, err := e.ApplyDrop(ctx, input.ID, input.Body.ColumnID, input.Body.Reason, actorID, input.Body.Force)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OrderResponse `json:"body"`
		}{Body: orderResponse(o)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "track-order",
		Method:      http.MethodGet,
		Path:        "/orders/{id}/track",
		Summary:     "Track order status and wait estimate",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body TrackResponse `json:"body"`
	}, error) {
		o, est, err := e.Track(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TrackResponse `json:"body"`
		}{Body: TrackResponse{Order: orderResponse(o), Estimate: est}}, nil
	})
}

func registerBoardView(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "restaurant-board",
		Method:      http.MethodGet,
		Path:        "/restaurants/{id}/board",
		Summary:     "Restaurant board view",
		Errors:      []int{http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID        string `path:"id"`
		Completed bool   `query:"completed"`
		Rejected  bool   `query:"rejected"`
	}) (*struct {
		Body BoardViewResponse `json:"body"`
	}, error) {
		if err := requireManager(ctx); err != nil {
			return nil, err
		}
		cfg, err := e.BoardConfig(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		orders, err := e.Repo.ListOrdersByRestaurant(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		view := board.View(cfg, orders, board.ViewOptions{
			ShowCompleted: input.Completed,
			ShowRejected:  input.Rejected,
		})
		cols := make([]BoardViewColumn, 0, len(view))
		for _, vc := range view {
			cols = append(cols, BoardViewColumn{Column: vc.Column, Orders: mapOrders(vc.Orders)})
		}
		return &struct {
			Body BoardViewResponse `json:"body"`
		}{Body: BoardViewResponse{RestaurantID: input.ID, Columns: cols}}, nil
	})
}
