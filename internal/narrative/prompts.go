package narrative

import (
	"encoding/json"
	"fmt"

	"github.com/Aukerul-Shuvo/financial-analyzer/internal/domain"
)

// Prompting strategies, executed in this order by the generator.
const (
	StrategyZeroShot = "zero_shot"
	StrategyFewShot  = "few_shot"
	StrategyCoT      = "cot"
)

// Strategies lists the prompting strategies in execution order.
var Strategies = []string{StrategyZeroShot, StrategyFewShot, StrategyCoT}

// Payload is the input contract of the narrative generator: the
// transactions under discussion and the aggregate analysis computed up
// to the latest of them.
type Payload struct {
	Transactions []*domain.Transaction    `json:"transactions"`
	Analysis     domain.AggregateSnapshot `json:"analysis"`
}

// BuildPrompt renders the prompt for the given strategy.
func BuildPrompt(strategy string, payload Payload) (string, error) {
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return "", fmt.Errorf("BuildPrompt: marshaling payload: %w", err)
	}

	switch strategy {
	case StrategyZeroShot:
		return zeroShotPrompt(string(data)), nil
	case StrategyFewShot:
		return fewShotPrompt(string(data)), nil
	case StrategyCoT:
		return chainOfThoughtPrompt(string(data)), nil
	default:
		return "", fmt.Errorf("BuildPrompt: unknown strategy %q", strategy)
	}
}

func zeroShotPrompt(data string) string {
	return "Using the financial transactions and analysis till that transaction, provided in the JSON data below, " +
		"write a comprehensive narrative that highlights changes in spending behavior with respect to earning changes over the course of a month.\n\n" +
		"Start with an overview of the user's spending and earning patterns. Then, detail specific behavior changes observed at different points in the month. " +
		"Conclude with a comparison between past and current analyses.\n\n" +
		"Ensure each observation is supported by data from the JSON and provide a clear, coherent narrative.\n\n" +
		"Here is the data:\n" + data + "\n"
}

func fewShotPrompt(data string) string {
	return "Below are examples of financial analysis narratives based on user transactions and analysis data. " +
		"Use these examples to write a narrative for the given JSON data.\n\n" +
		"Example 1:\n" +
		"\"In January 2023, the user showed a high spending pattern during the first week of the month, primarily on utility bills and rent payments. " +
		"Towards the end of the month, the spending significantly reduced as the user prepared for the upcoming month. " +
		"During busy work hours, there was an increase in transactions related to food delivery services.\"\n\n" +
		"Example 2:\n" +
		"\"In February 2023, the user's spending behavior indicated a spike in grocery and household item purchases mid-month. " +
		"There was a gradual decrease in non-essential purchases towards the end of the month. " +
		"Food delivery service usage was higher during lunch and dinner times on weekdays.\"\n\n" +
		"Now, write a similar narrative based on the following data:\n" + data + "\n"
}

func chainOfThoughtPrompt(data string) string {
	return "Using the financial transactions and analysis provided, generate a narrative by following a chain of thought process. " +
		"Break down the analysis into logical steps to explain changes in spending behavior with respect to earning changes over the month.\n\n" +
		"Step 1: Overview of spending and earning patterns.\n" +
		"\"The data from the given period shows that the user typically spends a large portion of their income at the beginning of the month due to fixed expenses like rent and utilities.\"\n\n" +
		"Step 2: Specific behavior changes at different times of the month.\n" +
		"\"As the month progresses, there is a noticeable reduction in spending, especially after the 25th day. This suggests a cautious approach towards the end of the month.\"\n\n" +
		"Step 3: Impact of daily routines on spending.\n" +
		"\"During weekdays, the user relies heavily on food delivery services during lunch and dinner times, indicating busy work hours. This pattern is consistent throughout the data.\"\n\n" +
		"Step 4: Comparative analysis between past and current data.\n" +
		"\"Comparing the current month's data with the previous months, there is an increase in discretionary spending on weekends, which highlights a change in leisure activities.\"\n\n" +
		"Now, using this chain of thought, write a detailed narrative based on the following data:\n" + data + "\n"
}
