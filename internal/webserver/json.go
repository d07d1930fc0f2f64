package webserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sugawarayuuta/sonnet"
)

// sonnetJSONSerializer swaps echo's encoding/json serializer for sonnet,
// which speaks the same API.
type sonnetJSONSerializer struct{}

func (sonnetJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := sonnet.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonnetJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := sonnet.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid json request body: %v", err)).SetInternal(err)
	}
	return nil
}
