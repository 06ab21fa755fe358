// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

//go:build debug
// +build debug

package godd

// _DEBUG unlocks the bookkeeping of unique-table and cache statistics.
const _DEBUG bool = true
