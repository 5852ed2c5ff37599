package requests

import (
	"bytes"
	"encoding/json"

	"github.com/brettbedarf/treefs"
)

// Field presence messages, matching the ones returned by the tree core
const (
	MsgInsertFields = "Request must include `name`, `type`, `parent`, `id` and `children`"
	MsgRemoveFields = "Request must include `name` and `parent`"
	MsgRenameFields = "Request must include `name`, `parent`, `update`"
	MsgMoveFields   = "Request must include `id`, `name`, `parent` and `update`"
)

var jsonNull = []byte("null")

func invalid(op, msg string, cause error) error {
	if cause != nil {
		return treefs.WrapError(treefs.KindValidation, op, msg, cause)
	}
	return treefs.NewError(treefs.KindValidation, op, msg)
}

// decodeID reads a present-but-nullable string id.
// ok is false when the field was absent or is not a string.
func decodeID(raw json.RawMessage) (id *string, ok bool) {
	if raw == nil {
		return nil, false
	}
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// UnmarshalInsert decodes an insert body and checks field presence.
// Values are validated further by the tree core.
func UnmarshalInsert(data []byte) (*treefs.InsertRequest, error) {
	var dto InsertDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, invalid("insert", "malformed request body", err)
	}
	id, hasID := decodeID(dto.ID)
	if dto.Name == "" || dto.Type == "" || dto.Parent == "" || !hasID || dto.Children == nil {
		return nil, invalid("insert", MsgInsertFields, nil)
	}
	return &treefs.InsertRequest{
		Name:     dto.Name,
		Type:     treefs.NodeType(dto.Type),
		Parent:   dto.Parent,
		ID:       id,
		Children: *dto.Children,
	}, nil
}

func UnmarshalRemove(data []byte) (*treefs.RemoveRequest, error) {
	var dto RemoveDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, invalid("remove", "malformed request body", err)
	}
	if dto.Name == "" || dto.Parent == "" {
		return nil, invalid("remove", MsgRemoveFields, nil)
	}
	return &treefs.RemoveRequest{Name: dto.Name, Parent: dto.Parent}, nil
}

func UnmarshalRename(data []byte) (*treefs.RenameRequest, error) {
	var dto RenameDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, invalid("rename", "malformed request body", err)
	}
	if dto.Name == "" || dto.Parent == "" || dto.Update == nil || dto.Update.Name == nil {
		return nil, invalid("rename", MsgRenameFields, nil)
	}
	return &treefs.RenameRequest{
		Name:    dto.Name,
		Parent:  dto.Parent,
		NewName: *dto.Update.Name,
	}, nil
}

func UnmarshalMove(data []byte) (*treefs.MoveRequest, error) {
	var dto MoveDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, invalid("move", "malformed request body", err)
	}
	id, hasID := decodeID(dto.ID)
	if !hasID || dto.Name == "" || dto.Parent == "" || dto.Update == nil || dto.Update.Parent == nil {
		return nil, invalid("move", MsgMoveFields, nil)
	}
	return &treefs.MoveRequest{
		ID:        id,
		Name:      dto.Name,
		Parent:    dto.Parent,
		NewParent: *dto.Update.Parent,
	}, nil
}
