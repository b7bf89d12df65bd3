/*
 * go-leia
 * Copyright (C) 2021 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"fmt"
	"time"

	"github.com/leiadb/secidx"
)

const docVar = "doc"

func main() {
	s, err := secidx.NewStore("./test/documents.db", secidx.WithoutSync())
	if err != nil {
		panic(err)
	}
	defer s.Close()

	c := s.Collection("json")

	compound, err := secidx.NewIndex("compound", false, false,
		secidx.NewField("id"),
		secidx.NewField("obj.key"),
		secidx.NewField("list.key"),
		secidx.NewField("list.subList[*]"),
	)
	if err != nil {
		panic(err)
	}
	if err = c.AddIndex(compound); err != nil {
		panic(err)
	}

	size := 8
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			for k := 0; k < size; k++ {
				for l := 0; l < size; l++ {
					if _, _, err := c.Insert(genJSON(i, j, k, l)); err != nil {
						panic(err)
					}
				}
			}
		}
	}
	fmt.Println("added docs")

	eq := func(field string, v secidx.Scalar) secidx.Comparison {
		return secidx.Comparison{
			Operator: secidx.OpEQ,
			Left:     secidx.Expr{Access: &secidx.AttributeAccess{Var: docVar, Field: secidx.NewField(field)}},
			Right:    secidx.Expr{Lit: &secidx.Literal{Value: v}},
		}
	}

	query := &secidx.Predicate{Members: []secidx.Comparison{
		eq("id", secidx.String("ID4")),
		eq("obj.key", secidx.String("OBJ.VAL4")),
		eq("list.key", secidx.String("LIST.VAL4")),
	}}

	t := time.Now()
	docs, err := c.Find(query, docVar, false)
	if err != nil {
		panic(err)
	}
	fmt.Printf("found %d docs in %s\n", len(docs), time.Since(t).String())

	rangeQuery := &secidx.Predicate{Members: []secidx.Comparison{
		{Operator: secidx.OpGE, Left: secidx.Expr{Access: &secidx.AttributeAccess{Var: docVar, Field: secidx.NewField("id")}}, Right: secidx.Expr{Lit: &secidx.Literal{Value: secidx.String("ID4")}}},
		{Operator: secidx.OpLT, Left: secidx.Expr{Access: &secidx.AttributeAccess{Var: docVar, Field: secidx.NewField("id")}}, Right: secidx.Expr{Lit: &secidx.Literal{Value: secidx.String("ID5")}}},
	}}

	t = time.Now()
	docs, err = c.Find(rangeQuery, docVar, false)
	if err != nil {
		panic(err)
	}
	fmt.Printf("found %d docs in %s\n", len(docs), time.Since(t).String())
}

// jsonTemplate mirrors the nested id/obj/list shape used to exercise the
// compound index above: a top-level id, two single-valued nested fields,
// and a subList array that is expanded into the index.
var jsonTemplate = `
{
	"id": "%s",
	"obj": {
		"key": "%s"
	},
	"list": {
		"key": "%s",
		"subList": ["%s"]
	}
}
`

func genJSON(i, j, k, l int) secidx.Document {
	id := fmt.Sprintf("ID%d", i)
	key := fmt.Sprintf("OBJ.VAL%d", j)
	key2 := fmt.Sprintf("LIST.VAL%d", k)
	key3 := fmt.Sprintf("SUBLIST.VAL%d", l)

	return secidx.DocumentFromString(fmt.Sprintf(jsonTemplate, id, key, key2, key3))
}
