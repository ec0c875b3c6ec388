package main

import (
	"fmt"
	"log"

	"github.com/alecthomas/repr"

	"github.com/kartiknair/math/pkg/gen"
	"github.com/kartiknair/math/pkg/parser"
)

const source = `inputs a, b;
sum = a + b;
scaled(x) = x * 100 - 27;
result = match scaled(sum) { 0 => 1, _ => scaled(sum) / 2, };
outputs result, sum;
`

func main() {
	program, err := parser.Parse([]byte(source))
	if err != nil {
		log.Fatal(err)
	}

	repr.Println(program)
	fmt.Println(gen.LLVM(program))
}
