/*
- @Author: aztec
- @Date: 2024-02-10 09:20:44
- @Description: 多重比较校正
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package evaluate

import (
	"math"
	"slices"
)

// Benjamini-Hochberg校正，控制错误发现率不超过q
// 返回与pvalues等长的拒绝标记。NaN不参与检验，也不会被拒绝
func BenjaminiHochberg(pvalues []float64, q float64) []bool {
	rejected := make([]bool, len(pvalues))

	idx := make([]int, 0, len(pvalues))
	for i, p := range pvalues {
		if !math.IsNaN(p) {
			idx = append(idx, i)
		}
	}
	m := len(idx)
	if m == 0 || q <= 0 {
		return rejected
	}

	// 按p值升序，p值相同按原始位置
	slices.SortStableFunc(idx, func(a, b int) int {
		if pvalues[a] < pvalues[b] {
			return -1
		} else if pvalues[a] > pvalues[b] {
			return 1
		}
		return 0
	})

	// 最大的k满足 p(k) <= k/m*q
	k := 0
	for i := m; i >= 1; i-- {
		if pvalues[idx[i-1]] <= float64(i)/float64(m)*q {
			k = i
			break
		}
	}
	for i := 0; i < k; i++ {
		rejected[idx[i]] = true
	}
	return rejected
}
