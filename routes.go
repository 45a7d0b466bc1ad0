package main

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"goldshop/app/category"
	"goldshop/app/product"
	"goldshop/internal/middleware"
	"goldshop/pkg/events"
	"goldshop/pkg/httperror"
)

type inventoryRepository interface {
	category.Repository
	product.Repository
	Ping(ctx context.Context) error
}

type routeDeps struct {
	repository inventoryRepository
	publisher  events.Publisher
	icons      category.IconStore // nil disables icon upload
}

func registerRoutes(app *fiber.App, deps routeDeps) {
	app.Get("/health", healthCheck(deps.repository, deps.publisher))

	getTree := category.NewGetCategoryTreeHandler(deps.repository)
	getCategory := category.NewGetCategoryHandler(deps.repository)
	createCategory := category.NewCreateCategoryHandler(deps.repository, deps.publisher)
	updateCategory := category.NewUpdateCategoryHandler(deps.repository, deps.publisher)
	bulkUpdate := category.NewBulkUpdateCategoriesHandler(deps.repository, deps.publisher)
	bulkMove := category.NewBulkMoveCategoriesHandler(deps.repository, deps.publisher)
	bulkDelete := category.NewBulkDeleteCategoriesHandler(deps.repository, deps.publisher)
	reorder := category.NewReorderCategoryHandler(deps.repository, deps.publisher)

	getProducts := product.NewGetProductsHandler(deps.repository)
	createProduct := product.NewCreateProductHandler(deps.repository, deps.publisher)
	updateProduct := product.NewUpdateProductHandler(deps.repository, deps.publisher)
	deleteProduct := product.NewDeleteProductHandler(deps.repository, deps.publisher)

	api := app.Group("/api/v1", middleware.NewSecurityHeadersMiddleware())

	// Static paths go before /categories/:id.
	api.Get("/categories/tree", handle[category.GetCategoryTreeRequest, category.GetCategoryTreeResponse](getTree))
	api.Post("/categories/bulk-update", handle[category.BulkUpdateCategoriesRequest, category.BulkUpdateCategoriesResponse](bulkUpdate))
	api.Post("/categories/bulk-move", handle[category.BulkMoveCategoriesRequest, category.BulkMoveCategoriesResponse](bulkMove))
	api.Post("/categories/bulk-delete", handle[category.BulkDeleteCategoriesRequest, category.BulkDeleteCategoriesResponse](bulkDelete))
	api.Delete("/categories/bulk-delete", handle[category.BulkDeleteCategoriesRequest, category.BulkDeleteCategoriesResponse](bulkDelete))
	api.Post("/categories/reorder", handle[category.ReorderCategoryRequest, category.ReorderCategoryResponse](reorder))
	api.Post("/categories", handle[category.CreateCategoryRequest, category.CreateCategoryResponse](createCategory))
	api.Get("/categories/:id", handle[category.GetCategoryRequest, category.GetCategoryResponse](getCategory))
	api.Put("/categories/:id", handle[category.UpdateCategoryRequest, category.UpdateCategoryResponse](updateCategory))
	if deps.icons != nil {
		api.Post("/categories/:id/icon", uploadIcon(category.NewUploadCategoryIconHandler(deps.repository, deps.icons, deps.publisher)))
	}

	api.Get("/products", handle[product.GetProductsRequest, product.GetProductsResponse](getProducts))
	api.Post("/products", handle[product.CreateProductRequest, product.CreateProductResponse](createProduct))
	api.Put("/products/:id", handle[product.UpdateProductRequest, product.UpdateProductResponse](updateProduct))
	api.Delete("/products/:id", handle[product.DeleteProductRequest, product.DeleteProductResponse](deleteProduct))
}

// uploadIcon reads the multipart "icon" field into the handler request.
func uploadIcon(handler *category.UploadCategoryIconHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := category.UploadCategoryIconRequest{ID: c.Params("id")}

		if file, err := c.FormFile("icon"); err == nil {
			f, err := file.Open()
			if err != nil {
				return writeError(c, httperror.BadRequest("category.icon.unreadable", "Failed to read icon file", nil))
			}
			defer f.Close()

			// One byte over the limit is enough for the handler to reject it.
			data, err := io.ReadAll(io.LimitReader(f, category.MaxIconSize+1))
			if err != nil {
				return writeError(c, httperror.BadRequest("category.icon.unreadable", "Failed to read icon file", nil))
			}
			req.Filename = file.Filename
			req.ContentType = file.Header.Get(fiber.HeaderContentType)
			req.Data = data
		}

		res, err := handler.Handle(c.UserContext(), &req)
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

type healthReporter interface {
	IsHealthy() bool
}

// healthCheck fails when the database is down. A broken broker connection is
// reported but does not fail the check; events are only lost, not requests.
func healthCheck(repository inventoryRepository, publisher events.Publisher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repository.Ping(c.UserContext()); err != nil {
			return writeError(c, httperror.New(fiber.StatusServiceUnavailable, "health.database_unavailable", "Database is unavailable", nil))
		}

		broker := "disabled"
		if reporter, ok := publisher.(healthReporter); ok {
			broker = "ok"
			if !reporter.IsHealthy() {
				broker = "unavailable"
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "broker": broker})
	}
}
