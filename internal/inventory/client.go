// Package inventory is the HTTP client of the inventory category API used by
// the admin screen and catctl.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"goldshop/domain"
	"goldshop/internal/categorytree"
	"goldshop/pkg/httperror"
)

// Credentials are forwarded on every request as the security headers the
// inventory service expects.
type Credentials struct {
	UserID    string
	UserEmail string
	Token     string
}

type Client struct {
	baseURL     string
	timeout     time.Duration
	credentials Credentials
}

var _ categorytree.Service = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration, credentials Credentials) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		credentials: credentials,
	}
}

type treeResponse struct {
	Categories []domain.CategoryNode `json:"categories"`
}

type categoryResponse struct {
	Category domain.CategoryNode `json:"category"`
}

type bulkUpdateRequest struct {
	IDs     []string       `json:"ids"`
	Updates map[string]any `json:"updates"`
}

type bulkMoveRequest struct {
	IDs      []string `json:"ids"`
	ParentID *string  `json:"parent_id"`
}

type bulkDeleteRequest struct {
	IDs   []string `json:"ids"`
	Force bool     `json:"force"`
}

func (c *Client) Tree(ctx context.Context) ([]domain.CategoryNode, error) {
	var res treeResponse
	if err := c.do(ctx, fiber.MethodGet, "/categories/tree", nil, &res); err != nil {
		return nil, err
	}
	return res.Categories, nil
}

func (c *Client) Category(ctx context.Context, id string) (domain.CategoryNode, error) {
	var res categoryResponse
	if err := c.do(ctx, fiber.MethodGet, "/categories/"+id, nil, &res); err != nil {
		return domain.CategoryNode{}, err
	}
	return res.Category, nil
}

func (c *Client) BulkUpdate(ctx context.Context, ids []string, updates map[string]any) error {
	return c.do(ctx, fiber.MethodPost, "/categories/bulk-update", bulkUpdateRequest{IDs: ids, Updates: updates}, nil)
}

func (c *Client) BulkMove(ctx context.Context, ids []string, parentID *string) error {
	return c.do(ctx, fiber.MethodPost, "/categories/bulk-move", bulkMoveRequest{IDs: ids, ParentID: parentID}, nil)
}

func (c *Client) BulkDelete(ctx context.Context, ids []string, force bool) error {
	return c.do(ctx, fiber.MethodPost, "/categories/bulk-delete", bulkDeleteRequest{IDs: ids, Force: force}, nil)
}

func (c *Client) Reorder(ctx context.Context, req categorytree.MoveRequest) error {
	return c.do(ctx, fiber.MethodPost, "/categories/reorder", req, nil)
}

func (c *Client) Create(ctx context.Context, req categorytree.CreateRequest) (domain.CategoryNode, error) {
	var res categoryResponse
	if err := c.do(ctx, fiber.MethodPost, "/categories", req, &res); err != nil {
		return domain.CategoryNode{}, err
	}
	return res.Category, nil
}

func (c *Client) Update(ctx context.Context, id string, req categorytree.EditRequest) error {
	return c.do(ctx, fiber.MethodPut, "/categories/"+id, req, nil)
}

// do sends one JSON request. fasthttp agents cannot be cancelled, so the
// context only shortens the timeout when its deadline is sooner.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("inventory %s %s: %w", method, path, err)
	}

	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.Set("User-ID", c.credentials.UserID)
	a.Set("User-Email", c.credentials.UserEmail)
	a.Set(fiber.HeaderAuthorization, c.credentials.Token)
	if timeout > 0 {
		a.Timeout(timeout)
	}
	if body != nil {
		a.JSON(body)
	}

	status, resBody, errs := a.Bytes()
	if len(errs) > 0 {
		zap.L().Warn("Inventory request failed", zap.String("method", method), zap.String("path", path), zap.Errors("errors", errs))
		return fmt.Errorf("inventory %s %s: %w", method, path, errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return decodeError(status, resBody)
	}

	if out == nil || len(resBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return fmt.Errorf("inventory %s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error body into *httperror.Error and wraps the domain
// sentinel matching its code, if any.
func decodeError(status int, body []byte) error {
	httpErr := &httperror.Error{}
	if err := json.Unmarshal(body, httpErr); err != nil || httpErr.Code == "" {
		httpErr = httperror.New(status, "inventory.unexpected_response", utils.StatusMessage(status), nil)
	}
	httpErr.Status = status

	switch httpErr.Code {
	case domain.CodeCategoryHasProducts:
		return fmt.Errorf("%w: %w", domain.ErrCategoryHasProducts, httpErr)
	case domain.CodeCategoryCycle:
		return fmt.Errorf("%w: %w", domain.ErrCategoryCycle, httpErr)
	case domain.CodeCategoryNotFound:
		return fmt.Errorf("%w: %w", domain.ErrCategoryNotFound, httpErr)
	}
	return httpErr
}

// IsBlockedByProducts reports whether the service refused a delete because
// the categories still hold products.
func IsBlockedByProducts(err error) bool {
	return errors.Is(err, domain.ErrCategoryHasProducts)
}
