// Package utils provides the identifier quoting and DDL building shared by
// the snapshot implementations.
//
//	utils.BacktickIdentifier("analytics.events")
//	// `analytics`.`events`
//
//	utils.NewSQLBuilder().Create("DATABASE").IfNotExists().Name("lake").String()
//	// CREATE DATABASE IF NOT EXISTS `lake`;
package utils
