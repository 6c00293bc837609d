package graphql

import "github.com/dmitrijs2005/hugmood/internal/common"

// resolverError exposes the error kind as extensions.code. The resolver
// runtime only looks at the concrete returned value, so every resolver
// returns errors through wrapErr.
type resolverError struct {
	message string
	code    common.Kind
}

func (e *resolverError) Error() string { return e.message }

func (e *resolverError) Extensions() map[string]any {
	return map[string]any{"code": string(e.code)}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return &resolverError{message: common.MessageOf(err), code: common.KindOf(err)}
}
