package tinyioc

import "reflect"

// collectionShape reports element type and shape of t if t can hold a collection of beans.
func collectionShape(t reflect.Type) (reflect.Type, Shape, bool) {
	switch t.Kind() {
	case reflect.Slice:
		return t.Elem(), List, true
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, 0, false
		}

		return t.Elem(), Set, true
	case reflect.Chan:
		if t.ChanDir() == reflect.SendDir {
			return nil, 0, false
		}

		return t.Elem(), Queue, true
	default:
		return nil, 0, false
	}
}

// adaptCollection gathers instances of beans into a value of type t.
func adaptCollection(t reflect.Type, beans []*Bean) (reflect.Value, error) {
	elem, shape, ok := collectionShape(t)
	if !ok {
		return reflect.Value{}, newUnsupportedCollectionError(t.String())
	}

	switch shape {
	case Set:
		set := reflect.MakeMapWithSize(t, len(beans))
		for _, bean := range beans {
			v, err := instanceValue(bean, elem)
			if err != nil {
				return reflect.Value{}, err
			}

			set.SetMapIndex(reflect.ValueOf(bean.Name).Convert(t.Key()), v)
		}

		return set, nil
	case Queue:
		queue := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, elem), len(beans))
		for _, bean := range beans {
			v, err := instanceValue(bean, elem)
			if err != nil {
				return reflect.Value{}, err
			}

			queue.Send(v)
		}

		queue.Close()

		return queue.Convert(t), nil
	default:
		list := reflect.MakeSlice(t, 0, len(beans))
		for _, bean := range beans {
			v, err := instanceValue(bean, elem)
			if err != nil {
				return reflect.Value{}, err
			}

			list = reflect.Append(list, v)
		}

		return list, nil
	}
}
