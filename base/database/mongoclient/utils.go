package mongoclient

import (
	"errors"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

var ErrNotStruct = errors.New("patch must be a struct or a pointer to struct")

// MakeBsonM turns a patch struct into a $set document.
// Nil pointers are left out, set pointers are dereferenced so the registry
// codecs see the underlying value. Plain fields follow their omitempty tag.
func MakeBsonM(patch interface{}) (bson.M, error) {
	val := reflect.ValueOf(patch)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return bson.M{}, nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, ErrNotStruct
	}

	set := bson.M{}
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		sf := typ.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		tag, err := bsoncodec.DefaultStructTagParser(sf)
		if err != nil {
			return nil, err
		}
		if tag.Skip {
			continue
		}

		field := val.Field(i)
		switch {
		case field.Kind() == reflect.Ptr:
			if !field.IsNil() {
				set[tag.Name] = field.Elem().Interface()
			}
		case tag.OmitEmpty && field.IsZero():
		default:
			set[tag.Name] = field.Interface()
		}
	}

	return set, nil
}
