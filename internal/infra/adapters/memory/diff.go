package memory

import (
	"reflect"
)

// Diff возвращает поля для Merge, превращающие prev в next.
// Вложенные объекты сравниваются по ключам, остальные значения заменяются целиком.
func Diff(prev, next map[string]any) map[string]any {
	fields := make(map[string]any)
	diffInto(fields, "", prev, next)

	return fields
}

func diffInto(fields map[string]any, prefix string, prev, next map[string]any) {
	for key, nv := range next {
		path := prefix + key

		pv, ok := prev[key]
		if !ok {
			fields[path] = nv
			continue
		}

		pm, pIsMap := pv.(map[string]any)
		nm, nIsMap := nv.(map[string]any)

		// пустой объект нельзя выразить через вложенные поля
		if pIsMap && nIsMap && len(nm) > 0 {
			diffInto(fields, path+"/", pm, nm)
			continue
		}

		if !reflect.DeepEqual(pv, nv) {
			fields[path] = nv
		}
	}

	for key := range prev {
		if _, ok := next[key]; !ok {
			fields[prefix+key] = nil
		}
	}
}
