package bencode

// ToAny converts value into plain Go values: string, int64, []any and
// map[string]any. When a dictionary repeats a key the first entry wins,
// matching Dict.Get.
func ToAny(value Value) any {
	switch v := value.(type) {
	case String:
		return string(v)
	case Integer:
		return int64(v)
	case List:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = ToAny(item)
		}
		return items
	case Dict:
		m := make(map[string]any, len(v))
		for _, entry := range v {
			key := string(entry.Key)
			if _, seen := m[key]; seen {
				continue
			}
			m[key] = ToAny(entry.Value)
		}
		return m
	default:
		return nil
	}
}
