/*
- @Author: aztec
- @Date: 2024-01-18 16:30:45
- @Description:
- @因子库。所有内置因子在这里注册
- @
- @Copyright (c) 2024 by aztec, All Rights Reserved.
*/
package factorlib

import (
	"github.com/serenity0102/factor-modelling-mining/common"
	"github.com/serenity0102/factor-modelling-mining/factor"
)

// 注册了所有内置因子的注册表
func Default() *factor.Registry {
	r := factor.NewRegistry()

	// 技术面
	r.Register(NameRSI, windowBuilder(metaRSI, DefaultRSIWindow, rsi))
	r.Register(NameROC, windowBuilder(metaROC, DefaultROCWindow, roc))

	// 流动性
	r.Register(NameTradingVolume, windowBuilder(metaTradingVolume, DefaultVolumeWindow, relativeVolume))

	// 估值
	r.Register(NamePB, simpleBuilder(metaPB, pb))
	r.Register(NamePE, simpleBuilder(metaPE, pe))
	r.Register(NamePEG, simpleBuilder(metaPEG, peg))

	// 财务健康
	r.Register(NameCurrentRatio, simpleBuilder(metaCurrentRatio, fieldRatio(FieldCurrentAssets, FieldCurrentLiabilities)))
	r.Register(NameCashRatio, simpleBuilder(metaCashRatio, fieldRatio(FieldCash, FieldCurrentLiabilities)))

	// 财务风险
	r.Register(NameDebtToEquity, simpleBuilder(metaDebtToEquity, fieldRatio(FieldTotalDebt, FieldShareholderEquity)))
	r.Register(NameInterestCoverage, simpleBuilder(metaInterestCoverage, fieldRatio(FieldEBIT, FieldInterestExpense)))

	// 经营
	r.Register(NameGrossProfitMargin, simpleBuilder(metaGrossProfitMargin, grossProfitMargin))
	r.Register(NameInventoryTurnover, simpleBuilder(metaInventoryTurnover, inventoryTurnover))

	// 成长
	r.Register(NameRevenueGrowth, windowBuilder(metaRevenueGrowth, DefaultGrowthWindow, revenueGrowth))

	// ESG
	r.Register(NameBoardAge, simpleBuilder(metaBoardAge, fieldValue(FieldBoardAge)))
	r.Register(NameEnvRating, simpleBuilder(metaEnvRating, fieldValue(FieldEnvRating)))
	r.Register(NameExecCompToRevenue, simpleBuilder(metaExecCompToRevenue, fieldRatio(FieldExecComp, FieldRevenue)))

	// Fama-French
	r.Register(NameSMB, simpleBuilder(metaSMB, smb))
	r.Register(NameHML, simpleBuilder(metaHML, hml))

	// 情绪
	r.Register(NameAvgSentiment, windowBuilder(metaAvgSentiment, DefaultSentimentWindow, avgSentiment))
	r.Register(NameNewSentiment, simpleBuilder(metaNewSentiment, newSentiment))

	common.LogNormal(logPrefix, "%d factors registered", len(r.Names()))
	return r
}
