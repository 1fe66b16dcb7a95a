package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxIDLength     = 64
	MaxNameLength   = 128
	MaxAddrLength   = 256
	MaxMembers      = 64
	MaxMetadataKeys = 32
	MaxPayloadBytes = 1 << 20

	// Regular expressions
	idPattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 ._-]*$`)
)

func init() {
	validate = validator.New()
}

// NodeRequest represents a request to register a node
type NodeRequest struct {
	ID       string            `json:"id" validate:"required,min=1,max=64"`
	Addr     string            `json:"addr" validate:"omitempty,max=256"`
	Region   string            `json:"region" validate:"omitempty,max=64"`
	Metadata map[string]string `json:"metadata" validate:"omitempty,max=32"`
}

// ClusterRequest represents a request to create a cluster
type ClusterRequest struct {
	Name              string   `json:"name" validate:"required,min=1,max=128"`
	Protocol          string   `json:"protocol" validate:"omitempty,oneof=raft paxos crdt"`
	Nodes             []string `json:"nodes" validate:"required,min=1,max=64,dive,min=1,max=64"`
	QuorumSize        int      `json:"quorum_size" validate:"required,min=1"`
	ReplicationFactor int      `json:"replication_factor" validate:"omitempty,min=1"`
}

// ValidateNodeRequest validates a node registration request
func ValidateNodeRequest(req *NodeRequest) error {
	if req == nil {
		return errors.New("node request cannot be nil")
	}

	// Validate using struct tags
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if err := ValidateID(req.ID); err != nil {
		return fmt.Errorf("ID: %w", err)
	}

	// Validate metadata keys
	for key := range req.Metadata {
		if key == "" {
			return errors.New("Metadata: key cannot be empty")
		}
		if len(key) > MaxIDLength {
			return fmt.Errorf("Metadata: key '%s' exceeds maximum length of %d characters", key, MaxIDLength)
		}
	}

	return nil
}

// ValidateClusterRequest validates a cluster creation request
func ValidateClusterRequest(req *ClusterRequest) error {
	if req == nil {
		return errors.New("cluster request cannot be nil")
	}

	// Validate using struct tags
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	// Additional name validation
	if !namePattern.MatchString(req.Name) {
		return fmt.Errorf("Name: '%s' contains invalid characters (only alphanumeric, space, dot, underscore and dash allowed)", req.Name)
	}

	// Validate member IDs
	for i, id := range req.Nodes {
		if err := ValidateID(id); err != nil {
			return fmt.Errorf("Nodes: member at index %d: %w", i, err)
		}
	}

	return nil
}

// ValidateID validates a node or member identifier
func ValidateID(id string) error {
	if id == "" {
		return errors.New("identifier cannot be empty")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("identifier '%s' exceeds maximum length of %d characters", id, MaxIDLength)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("identifier '%s' is invalid (must start with alphanumeric, followed by alphanumeric, dot, underscore or dash)", id)
	}
	return nil
}

// ValidatePayloadSize validates the size of a log entry or proposal payload
func ValidatePayloadSize(size int) error {
	if size > MaxPayloadBytes {
		return fmt.Errorf("payload size %d exceeds maximum of %d bytes", size, MaxPayloadBytes)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", field, param)
		case "dive":
			// For array elements
			return fmt.Errorf("%s: invalid element in array", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
