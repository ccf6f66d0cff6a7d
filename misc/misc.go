package misc

import (
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Respond writes a successful envelope, a nil data writes no data field.
func Respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, &Envelope{Success: true, Data: data})
}

func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, &Envelope{Success: false, Message: message})
}

// BindingPathID parses the named path parameter as an id.
func BindingPathID(c *gin.Context, name string) (types.ID, error) {
	value := c.Param(name)
	id, err := types.ParseID(value)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id '" + value + "'")
	}
	return id, nil
}
