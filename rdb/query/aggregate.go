package query

// 聚合表达式，可用于 Select、Having 和 OrderBy
//
//	query.Select(query.As(query.Count(ItemID), "total"))
//	query.Having(query.GtCol(query.Sum(ItemPrice), 100))

func Count(ref Ref) Ref {
	return Raw("COUNT(?)", ref)
}

// CountAll COUNT(*)
func CountAll() Ref {
	return Raw("COUNT(*)", nil)
}

func Sum(ref Ref) Ref {
	return Raw("SUM(?)", ref)
}

func Avg(ref Ref) Ref {
	return Raw("AVG(?)", ref)
}

func Min(ref Ref) Ref {
	return Raw("MIN(?)", ref)
}

func Max(ref Ref) Ref {
	return Raw("MAX(?)", ref)
}

// Distinct DISTINCT col，可以嵌套在 Count 中
func Distinct(ref Ref) Ref {
	return Raw("DISTINCT ?", ref)
}
