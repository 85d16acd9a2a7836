/*
- @Author: aztec
- @Date: 2024-02-07 11:05:18
- @Description: ESG因子
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import "github.com/serenity0102/factor-modelling-mining/factor"

var metaBoardAge = factor.Meta{
	Name:        NameBoardAge,
	Type:        factor.TypeESG,
	Description: "Average age of board members",
}

var metaEnvRating = factor.Meta{
	Name:        NameEnvRating,
	Type:        factor.TypeESG,
	Description: "Environmental rating",
}

var metaExecCompToRevenue = factor.Meta{
	Name:        NameExecCompToRevenue,
	Type:        factor.TypeESG,
	Description: "Executive compensation to revenue",
}
