// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

//go:build !debug
// +build !debug

package godd

const _DEBUG bool = false
