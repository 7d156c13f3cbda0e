package utils

import (
	"context"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/xmustafa5/b2b-exommmerce-sub003/config"
)

var validate = validator.New()

// ValidateInput checks a typed input struct against its validate tags.
// Inputs are validated at the boundary; the core never sees a malformed one.
func ValidateInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			return NewValidation("invalid input: %v", ProcessValidationErrors(err))
		}
		return NewValidation("invalid input: %v", err)
	}
	return nil
}

// check if id exists, return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}

	return nil
}

func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, column+" = ? AND NOT id = ?", value, exceptId)
	}

	if err != nil {
		return err
	}
	if count > 0 {
		return NewConflict("duplicate %s", column)
	}
	return nil
}

// count records matching condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&model)
	var count int64
	dbCtx.Where(condition, value...)
	if err := dbCtx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
